// Package resilience retries lookups whose factories failed.
//
// The container never retries on its own: a failed build is not cached, so
// the caller decides whether to ask again. Retry and RetryFunc implement
// that decision with exponential backoff and, by default, only repeat
// errors marked retryable:
//
//	repo, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (any, error) {
//	    return c.Get(ctx, "memberRepository")
//	})
package resilience
