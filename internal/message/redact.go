package message

import "strings"

// RedactForDisk returns a copy of msgs with every occurrence of a known
// sensitive value replaced by its placeholder tag, for conversations
// written to disk for debugging. secrets maps placeholder name -> value,
// the same shape state.SensitiveData.Resolve produces.
func RedactForDisk(msgs []Message, secrets map[string]string) []Message {
	if len(secrets) == 0 {
		return msgs
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{
			Role:    m.Role,
			Text:    redactText(m.Text, secrets),
			Images:  m.Images,
			Refusal: m.Refusal,
		}
	}
	return out
}

func redactText(text string, secrets map[string]string) string {
	for name, value := range secrets {
		if value == "" {
			continue
		}
		text = strings.ReplaceAll(text, value, "<secret>"+name+"</secret>")
	}
	return text
}
