package openai

import (
	"fmt"

	"docclassifier/internal/core/domain"
)

// maxHistory caps how much conversation context travels with each chat turn.
const maxHistory = 10

// maxDocumentChars truncates very long documents before they reach the model.
const maxDocumentChars = 12000

func buildQASystemPrompt(documentType string) string {
	return fmt.Sprintf(`You are an AI assistant specialized in analyzing %s documents.
You will be provided with the text content of a document and asked questions about it.
Provide accurate, concise answers based only on the information available in the document.
If the information is not available in the document, clearly state that.`, documentType)
}

func buildQAUserPrompt(question, documentText, documentType string) string {
	return fmt.Sprintf(`Document Type: %s
Document Content: %s

Question: %s

Please answer the question based on the document content provided.`, documentType, truncate(documentText), question)
}

func buildChatSystemPrompt(documentType string) string {
	return fmt.Sprintf(`You are an AI assistant specialized in analyzing %s documents.
You are having a conversation with a user about a specific document.
Provide helpful, accurate responses based on the document content.
Maintain context from the conversation history.`, documentType)
}

func buildChatContextPrompt(documentText, documentType string) string {
	return fmt.Sprintf("Document Type: %s\nDocument Content: %s", documentType, truncate(documentText))
}

func trimHistory(history []domain.ChatMessage) []domain.ChatMessage {
	if len(history) <= maxHistory {
		return history
	}
	return history[len(history)-maxHistory:]
}

func truncate(text string) string {
	if len(text) <= maxDocumentChars {
		return text
	}
	return text[:maxDocumentChars]
}
