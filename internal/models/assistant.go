package models

// Assistant is a static, preconfigured model profile. Assistants are pure
// configuration: selected per-session, never edited at runtime.
type Assistant struct {
	ID                string
	Name              string
	Icon              string
	Model             string
	SystemInstruction string
}

// DefaultAssistantID is the assistant new sessions start with.
const DefaultAssistantID = "nano-banana"

// The two assistant profiles.
var (
	AssistantNanoBanana = Assistant{
		ID:    "nano-banana",
		Name:  "Nano Banana",
		Icon:  "🍌",
		Model: "gemini-2.5-flash-image",
		SystemInstruction: "You are Nano Banana, a pure AI image generator. \n" +
			"CRITICAL RULE: You must NEVER reply with text, chat, explanations, or code.\n" +
			"If the user sends text, generate an image that visualizes that text.\n" +
			"If the user sends \"Hello\", generate an image of a greeting.\n" +
			"Your ONLY output must be the generated image(s).",
	}

	AssistantNanoBananaPro = Assistant{
		ID:    "nano-banana-pro",
		Name:  "Nano Banana Pro",
		Icon:  "🍌⁺",
		Model: "gemini-3-pro-image-preview",
		SystemInstruction: "You are Nano Banana Pro, a high-fidelity AI artist.\n" +
			"CRITICAL RULE: You must NEVER reply with text, chat, explanations, or code.\n" +
			"Your task is solely to generate superior quality images based on the prompt.\n" +
			"Even for simple greetings, generate an artistic visual representation.\n" +
			"Your ONLY output must be the generated image(s).",
	}
)

// Assistants returns all available assistant profiles.
func Assistants() []Assistant {
	return []Assistant{AssistantNanoBanana, AssistantNanoBananaPro}
}

// AssistantByID returns the assistant with the given id, falling back to the
// default profile for unknown ids.
func AssistantByID(id string) Assistant {
	for _, a := range Assistants() {
		if a.ID == id {
			return a
		}
	}
	return AssistantNanoBanana
}
