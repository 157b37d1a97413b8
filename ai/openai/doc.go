// Package openai implements the ai interfaces for OpenAI-compatible
// embedding services (OpenAI, Ollama, LocalAI, vLLM).
package openai
