package mcpserver

// CardFormatContract describes the canonical flashcard record format for
// LLM consumers reading cards through the MCP tools.
const CardFormatContract = `# Medkit Card Format Contract

Every flashcard returned by the medkit tools has this JSON shape.

## Structure

` + "```" + `json
{
  "id": "c2f6…",                 // opaque, stable identifier — never reuse or invent ids
  "question": "What is shock?",  // plain text, no HTML markup
  "answer": "Inadequate tissue perfusion…",
  "difficulty": "Basic",         // one of: Basic, Intermediate, Advanced
  "type": "definition",          // short category label (definition, scenario, application, recognition)
  "tags": ["chapter-10", "definition", "basic", "assessment"],
  "chapterNumber": 10,           // optional; positive integer syllabus unit
  "chapterTitle": "Shock",       // optional; display label for the chapter
  "group": "main"                // store location: "main" or "collection-<n>"
}
` + "```" + `

## Rules

1. **Ids are opaque.** Always pass ids back exactly as received.
2. **Tags are lowercase, kebab-case** (e.g. ` + "`" + `scene-safety` + "`" + `, ` + "`" + `patient-history` + "`" + `).
3. **Question and answer are plain text.** Markup is stripped by the content
   normalizer; do not add HTML when quoting cards.
4. **Difficulty values are title-case** and limited to the three listed above.
5. **Chapters** group cards into syllabus units; a card without
   ` + "`" + `chapterNumber` + "`" + ` is general content.
`
