package generation

import (
	"fmt"
	"strings"
)

const architectSystemPrompt = `You are a curriculum architect for higher education. You break a topic into a small set of concepts and the prerequisite relations between them.`

func buildGraphUserMessage(topic, level string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	b.WriteString(fmt.Sprintf("Learner level: %s\n", level))

	b.WriteString(`
Instructions:
Design a directed acyclic graph of learning concepts for this topic.
1. Produce between 5 and 8 concepts. Each has a short unique id (for example c1, c2) and a readable label.
2. Each edge points from a prerequisite (source) to the concept that builds on it (target).
3. Start from foundational concepts; at least one concept must have no prerequisites.
4. Never create a cycle. Only reference ids that appear in the node list.`)

	return b.String()
}

const professorSystemPrompt = `You are a university professor writing a short, rigorous lecture on a single concept for one student.`

func buildExplanationUserMessage(label string, bias Bias) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Concept: %s\n", label))
	b.WriteString(fmt.Sprintf("\nStudent history (you must take this into account):\n%s\n", bias.Summary))

	b.WriteString(`
Instructions:
1. Explain the concept clearly in about 300 words, with the rigour expected of an undergraduate course.
2. Refer to the key formula of the concept where one exists.`)

	switch bias.Mode {
	case BiasRemedial:
		b.WriteString("\n3. The student has been struggling. Slow down, fill foundational gaps, and use worked examples and analogies.")
	case BiasConcise:
		b.WriteString("\n3. The student has been doing well. Keep it concise and move quickly to applications.")
	}

	return b.String()
}

const proctorSystemPrompt = `You are an exam proctor writing multiple-choice questions that test deep understanding rather than recall.`

func buildQuizUserMessage(label string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Concept: %s\n", label))
	b.WriteString(fmt.Sprintf(`
Instructions:
1. Write exactly %d distinct questions about this concept.
2. Each question has exactly %d answer options. Prefix them "A) ", "B) ", "C) ", "D) ".
3. correct_option_index is the zero-based index of the single correct option.
4. Give a one or two sentence explanation of why the correct option is correct.`, QuizSize, OptionsPerItem))

	return b.String()
}

const notationSystemPrompt = `You pick the single most important mathematical or scientific formula for a concept and write it in LaTeX.`

func buildNotationUserMessage(label string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Concept: %s\n", label))
	b.WriteString(`
Instructions:
1. If a formula is central to the concept, return its LaTeX source (no surrounding $ signs) and one sentence on why it matters.
2. If no formula is genuinely relevant, return an empty latex_equation and say why in reason.`)

	return b.String()
}

const auditorSystemPrompt = `You are a content auditor. You judge how factually reliable a piece of teaching material is.`

func buildAuditUserMessage(text string) string {
	var b strings.Builder

	b.WriteString("Lecture:\n")
	if strings.TrimSpace(text) == "" {
		b.WriteString("(no lecture text was produced)\n")
	} else {
		b.WriteString(text)
		b.WriteString("\n")
	}

	b.WriteString(`
Instructions:
1. Rate the hallucination risk of the lecture from 0.0 (highly factual, high confidence) to 1.0 (likely wrong, low confidence).
2. If the score is above 0.3, briefly state what is doubtful in flagged_reason. Otherwise write "Content is highly factual".
3. Missing or empty lecture text is maximum risk.`)

	return b.String()
}

const evaluatorSystemPrompt = `You are a learning diagnostician. When a student fails an assessment you identify the one missing prerequisite that best explains the failure.`

func buildRemediationUserMessage(label string, score float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Concept: %s\n", label))
	b.WriteString(fmt.Sprintf("Assessment score: %.0f%%\n", score*100))
	b.WriteString(fmt.Sprintf(`
Instructions:
1. Name one specific sub-concept the student is missing. Keep the label short.
2. Use the id %q unless it clearly does not fit.
3. Give a brief reason why this prerequisite is needed.`, RemedialID(label)))

	return b.String()
}

// RemedialID is the suggested id for a remedial node in front of label.
func RemedialID(label string) string {
	return "remedial_" + strings.ReplaceAll(label, " ", "_")
}
