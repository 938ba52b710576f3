// Package advisor provides clients for the hosted text-generation services
// that turn a purchase prompt into advice. Gemini, OpenAI and Anthropic are
// supported, wrapped with retry logic, rate limiting and response caching.
package advisor
