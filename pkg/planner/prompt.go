package planner

import (
	"encoding/json"
	"fmt"
)

// DefaultInstruction is substituted when the caller provides no instruction.
const DefaultInstruction = "Organize by file type."

// promptTemplate carries the formatting rules, worked example, and slots for
// the file list JSON and the user instruction.
const promptTemplate = `
You are a hyper-intelligent file organization expert. Your ONLY task is to generate a valid JSON object that represents a file move plan.
Your response MUST be ONLY the raw JSON object, starting with ` + "`[`" + ` and ending with ` + "`]`" + `. Do not wrap it in markdown or any other text.

**YOUR PRIMARY DIRECTIVE:**
The user's prompt is your absolute command. You MUST follow it precisely, even if it overrides your default logic. Analyze the prompt for keywords related to grouping, dates (year, month), or content (e.g., "invoices", "reports").

**FILE DATA ANALYSIS:**
You will be given a list of files. For each file, you have:
- "path": The original location. This MUST be the value for the "source" key in your JSON.
- "name": The filename. Use this to infer content (e.g., "report.pdf" is a document).
- "created_at" / "modified_at": These are timestamps. Use them if the user asks for date-based organization (e.g., "organize by year").

**CRITICAL RULES:**
1.  **USER PROMPT IS LAW:** If the user says "put images and videos in 'Media'", you MUST do that. Do not create separate 'Images' and 'Videos' folders.
2.  **DEFAULT BEHAVIOR (No User Prompt):** If the prompt is empty, your default is to organize by common file types (e.g., Images, Documents, Videos, Audio, Archives, Others).
3.  **JSON FORMAT:** The "destination" value must be a string in the format "FolderName/filename.ext". Do not use backslashes.

**EXAMPLE (Date-based organization):**
USER INSTRUCTION: "Organize my files by the year they were modified."
FILE: { "path": "C:/path/doc.pdf", "name": "doc.pdf", "modified_at": 1678886400000 }
JSON RESPONSE:
[
  {
    "source": "C:/path/doc.pdf",
    "destination": "2023/doc.pdf"
  }
]

---
Now, based on the following file list and user instructions, generate the JSON move plan.
File list: %s
User Instructions: %q
`

// BuildPrompt renders the generation prompt for the given file list and user
// instruction. An empty instruction falls back to DefaultInstruction.
func BuildPrompt(files []FileDescriptor, userPrompt string) (string, error) {
	if files == nil {
		files = []FileDescriptor{}
	}

	filesJSON, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return "", NewErrorWithCause(KindInput, err, "failed to encode file list")
	}

	instruction := userPrompt
	if instruction == "" {
		instruction = DefaultInstruction
	}

	return fmt.Sprintf(promptTemplate, filesJSON, instruction), nil
}
