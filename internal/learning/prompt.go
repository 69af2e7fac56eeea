package learning

import (
	"fmt"
	"strings"

	"github.com/dlemos/caderno/internal/study"
)

const extractSystemPrompt = `You are a study assistant. Given the content of a learner's own note, extract the distinct concepts it covers, ordered from foundational to advanced. Only extract concepts actually present in the note.`

func buildExtractUserMessage(noteTitle string, noteText string, cfg Config) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Note: %s\n\n", noteTitle))
	if noteText != "" {
		b.WriteString("Content:\n")
		b.WriteString(noteText)
		b.WriteString("\n")
	} else {
		b.WriteString("The note is attached as a document.\n")
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Extract at most %d concepts. For each concept, propose up to %d short practice problem titles the learner could work through to test that concept. Problems must be solvable from the note's content alone.`,
		cfg.MaxConcepts, cfg.ProblemsPerConcept))

	return b.String()
}

const tutorSystemPrompt = `You are a Socratic tutor working through a learner's own study note with them. Ask guiding questions instead of lecturing. Keep each turn short. Never reveal a full solution unless the support level instructions say to.`

// supportInstructions adjusts scaffolding to the item's support ratchet.
func supportInstructions(level int) string {
	switch {
	case level <= 1:
		return "Support level 1: questions only, no hints."
	case level == 2:
		return "Support level 2: offer a small hint with each question."
	case level == 3:
		return "Support level 3: break the problem into explicit steps and confirm each one."
	default:
		return "Support level 4: walk through the reasoning together, asking the learner only to confirm or complete small gaps."
	}
}

func buildIntroUserMessage(item study.Item, level int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Concept: %s\n", item.Title))
	if item.Body != "" {
		b.WriteString(fmt.Sprintf("Summary: %s\n", item.Body))
	}
	b.WriteString(supportInstructions(level))
	b.WriteString("\n\nIntroduce this concept in two or three sentences grounded in the note, then ask the learner one opening question about it.")
	return b.String()
}

// SeedMessage synthesizes the first user turn when the learner opens a
// practice problem that has no history yet.
func SeedMessage(problemTitle string) study.Message {
	return study.NewMessage(study.RoleUser,
		fmt.Sprintf("I want to work through the practice problem: %s", problemTitle))
}

const evalSystemPrompt = `You are evaluating one answer in a Socratic tutoring dialog. Decide whether the learner has demonstrated understanding of the concept, needs more scaffolding, or should simply keep going.`

func buildEvalUserMessage(item study.Item, history []study.Message, answer string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Concept: %s\n", item.Title))
	b.WriteString(fmt.Sprintf("Current support level: %d (1 = none, 4 = maximal scaffolding)\n", item.SupportLevel))

	b.WriteString("\nDialog so far:\n")
	b.WriteString(renderDialog(history))

	b.WriteString(fmt.Sprintf("\nLatest answer from the learner:\n%s\n", answer))

	b.WriteString(`
Instructions:
Choose "advance" only when the latest answer shows the learner genuinely understands the concept. Choose "increase_support" when the learner is stuck or repeatedly wrong. Otherwise choose "continue".`)

	return b.String()
}

// renderDialog flattens a history for evaluation prompts. Notices are
// presentation-only and excluded.
func renderDialog(history []study.Message) string {
	var b strings.Builder
	for _, m := range history {
		if m.Type == study.TypeNotice {
			continue
		}
		role := "tutor"
		if m.Role == study.RoleUser {
			role = "learner"
		}
		b.WriteString(fmt.Sprintf("[%s] %s\n", role, m.Content))
	}
	return b.String()
}
