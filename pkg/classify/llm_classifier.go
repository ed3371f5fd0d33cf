package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-helpdesk-be/pkg/llm"
)

// LLMClassifier performs reply classification with a pure LLM call.
// Provider errors and malformed output degrade to `unclear` so a flaky
// model re-prompts the customer instead of crashing the conversation.
type LLMClassifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewLLMClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *LLMClassifier {
	return &LLMClassifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (c *LLMClassifier) Classify(
	ctx context.Context,
	instruction string,
	history []llm.Message,
	reply string,
) (*Classification, error) {

	prompt := c.buildPrompt(instruction, history, reply)

	// Temperature 0 for deterministic output.
	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Printf("[ERROR] Reply classification failed: %v", err)
		return fallbackClassification(), nil
	}

	classification, err := parseClassification(response)
	if err != nil {
		c.logger.Printf("[WARN] Classification parsing failed, using fallback: %v", err)
		return fallbackClassification(), nil
	}

	c.logger.Printf("[CLASSIFY] Outcome: %s (Confidence: %.2f, Detail: %s)",
		classification.Outcome, classification.Confidence, classification.Detail)

	return classification, nil
}

func (c *LLMClassifier) buildPrompt(instruction string, history []llm.Message, reply string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a troubleshooting reply analyzer. Your ONLY job is to judge the customer's reply against the current instruction.\n")
	prompt.WriteString("You do NOT answer the customer. You only classify the reply.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<current_instruction>\n")
	prompt.WriteString(instruction)
	prompt.WriteString("\n</current_instruction>\n\n")

	if len(history) > 0 {
		prompt.WriteString("<conversation_history>\n")
		for _, msg := range history {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
		prompt.WriteString("</conversation_history>\n\n")
	}

	prompt.WriteString("<customer_reply>\n")
	prompt.WriteString(reply)
	prompt.WriteString("\n</customer_reply>\n\n")

	prompt.WriteString("<outcome_definitions>\n")
	prompt.WriteString("Choose ONE outcome that best matches the reply:\n\n")
	prompt.WriteString("step_success: Customer performed the instruction and reports what they observed\n")
	prompt.WriteString("  - Put the observation into detail (e.g. 'lights are green', 'wan light is red')\n\n")
	prompt.WriteString("step_failure: Customer tried the instruction but it did not help, or the check failed\n\n")
	prompt.WriteString("needs_help: Customer does not understand the instruction or asks how to do it\n\n")
	prompt.WriteString("wants_escalation: Customer asks for a technician, a human, or refuses to continue\n\n")
	prompt.WriteString("resolved: Customer states the problem is gone / everything works now\n\n")
	prompt.WriteString("unclear: The reply cannot be mapped to any outcome above\n")
	prompt.WriteString("</outcome_definitions>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"outcome\": \"step_success|step_failure|needs_help|wants_escalation|resolved|unclear\",\n")
	prompt.WriteString("  \"detail\": \"what the customer observed, in their words\",\n")
	prompt.WriteString("  \"confidence\": 0.95\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseClassification(response string) (*Classification, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var classification Classification
	if err := json.Unmarshal([]byte(jsonContent), &classification); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	classification.Outcome = Outcome(strings.ToLower(strings.TrimSpace(string(classification.Outcome))))
	if !classification.Outcome.Valid() {
		return nil, fmt.Errorf("unknown outcome %q", classification.Outcome)
	}

	return &classification, nil
}

func fallbackClassification() *Classification {
	return &Classification{
		Outcome:    OutcomeUnclear,
		Confidence: 0.0,
	}
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
