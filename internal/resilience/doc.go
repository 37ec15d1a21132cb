// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes circuit breakers for the external model services (LLM extractor,
// intent classifier, token tagger, catalog search) and retry logic with
// exponential backoff and jitter for best-effort side channels.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.LLMExtractorConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	retryConfig := retry.CatalogConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience
