package modelapi

// Fixed generation parameters shared by every provider.
const (
	TEMPERATURE = 0.7
	MAX_TOKENS  = 1500
)

const (
	OPENAI_MODEL_NAME = "gpt-4o"
	GEMINI_MODEL_NAME = "gemini-2.5-flash"
	GROQ_MODEL_NAME   = "llama-3.3-70b-versatile"
)

const SYSTEM_PROMPT = `You are an expert speech writer who specializes in creating compelling self-introduction speeches using the Who-What-Why framework. Always respond with valid JSON.`

const NARRATION_INSTRUCTION = `
Read this self-introduction aloud like a confident person meeting a friendly room for the first time.
Warm, clear and unhurried. Pause briefly between paragraphs.
Let questions to the audience sound like real questions.
`
