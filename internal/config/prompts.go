package config

import "github.com/yungbote/courseforge/internal/types"

// Compiled-in prompt templates. prompts.yaml entries override per kind; a
// partial override (user text only) keeps the default system text.

func defaultPrompts() map[types.Kind]PromptTemplate {
	return map[types.Kind]PromptTemplate{
		types.KindOutline: {
			System: "You are an expert curriculum designer. You produce complete, well-structured course outlines in clean markdown and you follow the requested counts exactly.",
			User: `Design a complete course outline in {language}.

Course: {course_name}
Subject: {subject}
Level: {level}
Description: {description}
Constraints: {constraints}

Structure requirements (follow these EXACTLY):
- Exactly {num_modules} modules, written as level-2 headings: "## Module N: <name>"
- Exactly {total_sessions} sessions in total across all modules, written as level-3 headings: "### Session N: <title>"
- One sentence of module description directly under each module heading.
- Under every session, three labelled bullet lists:
  **Subtopics:** between {subtopics_min} and {subtopics_max} items
  **Learning Objectives:** between {objectives_min} and {objectives_max} items
  **Key Concepts:** between {concepts_min} and {concepts_max} items

Number modules 1..{num_modules} and sessions 1..N within each module. Output only the outline markdown.`,
			Required: []string{
				"language", "course_name", "subject", "level", "description", "constraints",
				"num_modules", "total_sessions",
				"subtopics_min", "subtopics_max", "objectives_min", "objectives_max", "concepts_min", "concepts_max",
			},
		},
		types.KindLecture: {
			System: "You are a university lecturer writing complete lecture scripts in markdown. You write concretely, define terms, and use worked examples.",
			User: `Write the full lecture for session {session_number} of {total_sessions}, "{session_title}" (module: {module_name}), in {language}.

Course outline context:
{outline_context}

Cover these subtopics: {subtopics}
Learning objectives: {learning_objectives}
Key concepts to define: {key_concepts}

Requirements (follow EXACTLY):
- Between {min_word_count} and {max_word_count} words.
- Between {min_sections} and {max_sections} level-2 sections ("## ...").
- Between {min_examples} and {max_examples} concrete examples introduced with phrases like "for example", "for instance", "such as", "consider" or "imagine".

Output only the lecture markdown, without a top-level title.`,
			Required: []string{
				"language", "session_number", "total_sessions", "session_title", "module_name",
				"outline_context", "subtopics", "learning_objectives", "key_concepts",
				"min_word_count", "max_word_count", "min_sections", "max_sections", "min_examples", "max_examples",
			},
		},
		types.KindLab: {
			System: "You are a lab instructor writing hands-on lab instructions in markdown. Every lab has materials, safety notes and a numbered procedure.",
			User: `Write lab {lab_number} for the session "{session_title}" in {language}. The lab focuses on: {lab_focus}.

Key concepts exercised: {key_concepts}

Requirements (follow EXACTLY):
- A "## Materials" section with a bulleted materials list.
- A "## Safety" section with explicit safety warnings.
- A "## Procedure" section with at least {min_steps} numbered steps ("1.", "2.", ...).
- A "## Expected Results" section and a short "## Analysis" section.

Output only the lab markdown, without a top-level title.`,
			Required: []string{"language", "lab_number", "session_title", "lab_focus", "key_concepts", "min_steps"},
		},
		types.KindStudyNotes: {
			System: "You write compact revision notes in markdown. Definitions are precise and every key concept gets a bolded entry.",
			User: `Write study notes for the session "{session_title}" in {language}.

Subtopics: {subtopics}
Key concepts: {key_concepts}

Requirements (follow EXACTLY):
- Between {min_key_concepts} and {max_key_concepts} key-concept entries, each formatted exactly as "- **Concept**: definition".
- At most {max_word_count} words in total.
- Group the notes under a few level-2 sections.

Output only the notes markdown, without a top-level title.`,
			Required: []string{"language", "session_title", "subtopics", "key_concepts", "min_key_concepts", "max_key_concepts", "max_word_count"},
		},
		types.KindDiagram: {
			System: "You produce valid Mermaid diagrams. You output only Mermaid source, never prose and never code fences.",
			User: `Create Mermaid diagram {diagram_number} for the session "{session_title}".

Visualize one of: {subtopics}

Requirements (follow EXACTLY):
- Start directly with a Mermaid header line (flowchart TD, graph TD, sequenceDiagram, classDiagram, stateDiagram-v2, erDiagram, or mindmap).
- At least {min_nodes} nodes.
- Node labels in {language}.

Output only Mermaid source.`,
			Required: []string{"language", "diagram_number", "session_title", "subtopics", "min_nodes"},
		},
		types.KindQuestions: {
			System: "You write assessment questions in a strict markdown format: \"**Question N:**\" stems ending in \"?\", options \"A)\" to \"D)\" for multiple choice, and \"**Answer:**\" plus \"**Explanation:**\" blocks.",
			User: `Write {num_questions} assessment questions for the session "{session_title}" in {language}: {num_mc} multiple-choice, {num_sa} short-answer, {num_essay} essay.

Key concepts to assess: {key_concepts}

Requirements (follow EXACTLY):
- Number every question as "**Question N:**" and end every stem with "?".
- Multiple-choice questions have exactly 4 options labelled "A)" "B)" "C)" "D)", one per line, then a "**Answer:**" line and an "**Explanation:**" line.
- Short-answer and essay questions get a "**Answer:**" outline of the expected response.

Output only the questions markdown.`,
			Required: []string{"language", "session_title", "num_questions", "num_mc", "num_sa", "num_essay", "key_concepts"},
		},
		types.KindApplication: {
			System: "You write real-world application write-ups in markdown, grounded in the session material provided.",
			User: `Write real-world applications of the session "{session_title}" in {language}.

Session material:
{session_content}

Requirements (follow EXACTLY):
- At least {min_items} distinct case studies, each under its own "## Case Study: ..." heading.
- Name the industry or domain of each case study.
- Tie every case study back to a concept from the session material.

Output only the markdown, without a top-level title.`,
			Required: []string{"language", "session_title", "session_content", "min_items"},
		},
		types.KindExtension: {
			System: "You write advanced extension material in markdown for students who finished the core session.",
			User: `Write extension material beyond the session "{session_title}" in {language}.

Session material:
{session_content}

Requirements (follow EXACTLY):
- At least {min_items} advanced topics, each under its own "## Advanced Topic: ..." heading.
- For each topic, explain what it builds on from the session and where to study it further.

Output only the markdown, without a top-level title.`,
			Required: []string{"language", "session_title", "session_content", "min_items"},
		},
		types.KindVisualization: {
			System: "You produce valid Mermaid diagrams summarizing instructional content. You output only Mermaid source, never prose and never code fences.",
			User: `Create one Mermaid visualization that summarizes the session "{session_title}".

Session material:
{session_content}

Requirements (follow EXACTLY):
- Start directly with a Mermaid header line (flowchart TD, graph TD, mindmap, or classDiagram).
- At least {min_nodes} nodes, labels in {language}.

Output only Mermaid source.`,
			Required: []string{"language", "session_title", "session_content", "min_nodes"},
		},
		types.KindIntegration: {
			System: "You write integration notes in markdown that connect a session to the rest of its course.",
			User: `Write integration notes for the session "{session_title}" in {language}, connecting it to the rest of the course.

Session material:
{session_content}

Requirements (follow EXACTLY):
- At least {min_items} explicit cross-references to other sessions or modules, each as a bullet starting with "- Connects to".
- Explain briefly why each connection matters.

Output only the markdown, without a top-level title.`,
			Required: []string{"language", "session_title", "session_content", "min_items"},
		},
		types.KindInvestigation: {
			System: "You design open-ended student investigations in markdown.",
			User: `Design student investigations for the session "{session_title}" in {language}.

Session material:
{session_content}

Requirements (follow EXACTLY):
- At least {min_items} research questions, each under its own "## Research Question: ..." heading ending in "?".
- For each, sketch a method a student could follow and the evidence they should collect.

Output only the markdown, without a top-level title.`,
			Required: []string{"language", "session_title", "session_content", "min_items"},
		},
		types.KindOpenQuestions: {
			System: "You summarize genuinely unresolved questions in a field, in markdown, honestly marking what is unknown.",
			User: `List open questions of the field related to the session "{session_title}" in {language}.

Session material:
{session_content}

Requirements (follow EXACTLY):
- At least {min_items} distinct open questions, each as a numbered item whose first line ends in "?".
- For each, one short paragraph on why it is still open.

Output only the markdown, without a top-level title.`,
			Required: []string{"language", "session_title", "session_content", "min_items"},
		},
	}
}
