package interview

import (
	"fmt"
	"strings"

	"github.com/dlemos/caderno/internal/study"
)

const questionsSystemPrompt = `You are a technical interviewer preparing a mock interview from a candidate's own study note. Ask questions answerable from the note's subject matter, mixing recall, application, and design.`

func buildQuestionsUserMessage(noteTitle, noteText string, count int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Note: %s\n\n", noteTitle))
	if noteText != "" {
		b.WriteString("Content:\n")
		b.WriteString(noteText)
		b.WriteString("\n")
	} else {
		b.WriteString("The note is attached as a document.\n")
	}
	b.WriteString(fmt.Sprintf("\nInstructions:\nGenerate exactly %d interview questions ordered from easier to harder.", count))
	return b.String()
}

const interviewerSystemPrompt = `You are conducting a mock technical interview. Ask the current question, probe vague answers with short follow-ups, and stay neutral: never reveal whether an answer is right during the conversation.`

func buildAskUserMessage(item study.Item) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Question to ask: %s\n", item.Title))
	if item.Category != "" {
		b.WriteString(fmt.Sprintf("Topic: %s\n", item.Category))
	}
	b.WriteString("Ask this question conversationally, in one or two sentences, without answering it.")
	return b.String()
}

const evalSystemPrompt = `You are grading one answer from a mock technical interview. Be rigorous and specific; grade only what the candidate actually said.`

func buildEvalUserMessage(item study.Item, history []study.Message, answer string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Question: %s\n", item.Title))
	if item.Difficulty != "" {
		b.WriteString(fmt.Sprintf("Level: %s\n", item.Difficulty))
	}

	if dialog := renderDialog(history); dialog != "" {
		b.WriteString("\nExchange so far:\n")
		b.WriteString(dialog)
	}

	b.WriteString(fmt.Sprintf("\nCandidate's answer:\n%s\n", answer))
	b.WriteString("\nScore the answer on correctness, depth, and clarity (0-4 each), give an overall verdict, and list concrete strengths and improvements.")
	return b.String()
}

const finalSystemPrompt = `You are wrapping up a mock technical interview. Produce an overall verdict from the per-question evaluations.`

func buildFinalUserMessage(items []study.Item) string {
	var b strings.Builder
	b.WriteString("Per-question results:\n")
	for i, item := range items {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Title))
		if item.Evaluation == nil {
			b.WriteString("   (not answered)\n")
			continue
		}
		b.WriteString(fmt.Sprintf("   score: %s\n", item.Evaluation.Score))
		for _, d := range item.Evaluation.Dimensions {
			b.WriteString(fmt.Sprintf("   %s: %d/4\n", d.Name, d.Score))
		}
	}
	b.WriteString("\nGive the overall verdict and a short summary of the candidate's performance.")
	return b.String()
}

func renderDialog(history []study.Message) string {
	var b strings.Builder
	for _, m := range history {
		if m.Type == study.TypeNotice {
			continue
		}
		role := "interviewer"
		if m.Role == study.RoleUser {
			role = "candidate"
		}
		b.WriteString(fmt.Sprintf("[%s] %s\n", role, m.Content))
	}
	return b.String()
}
