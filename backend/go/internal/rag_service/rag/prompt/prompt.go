// Package prompt builds the single-turn instruction sent to the generation model.
package prompt

import (
	"strings"
)

const template = "You are a helpful and informative bot that answers questions using text from the reference passage included below. " +
	"Be sure to respond in a complete sentence, being comprehensive, including all relevant background information. " +
	"However, you are talking to a non-technical audience, so be sure to break down complicated concepts and " +
	"strike a friendly and converstional tone. " +
	"If the passage is irrelevant to the answer, you may ignore it.\n" +
	"QUESTION: '%QUERY%'\n" +
	"PASSAGE: '%PASSAGE%'\n\n" +
	"ANSWER:\n"

// sanitizer strips quotes and flattens newlines so the passage cannot break the quoted slot.
var sanitizer = strings.NewReplacer("'", "", "\"", "", "\n", " ")

// Build fills the template with query and a sanitized passage.
// The query is inserted verbatim.
func Build(query, passage string) string {
	return strings.NewReplacer(
		"%QUERY%", query,
		"%PASSAGE%", Sanitize(passage),
	).Replace(template)
}

// Sanitize removes single and double quotes and replaces each newline with a space.
func Sanitize(passage string) string {
	return sanitizer.Replace(passage)
}
