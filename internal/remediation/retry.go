package remediation

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy tunes the exponential backoff applied to transient failures.
// Delays grow as BaseDelay doubled per attempt, capped at MaxDelay. A
// transient failure on the final attempt is escalated to permanent.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	CallTimeout time.Duration
}

// DefaultRetryPolicy mirrors the tuning the pipeline ships with.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		CallTimeout: 10 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	normalized := p
	if normalized.MaxAttempts < 1 {
		normalized.MaxAttempts = 1
	}
	if normalized.BaseDelay <= 0 {
		normalized.BaseDelay = 250 * time.Millisecond
	}
	return normalized
}

var errTransient = errors.New("remediation: transient failure")

// Attempt runs one request against the client under the policy. Transient
// failures retry with exponential backoff until the attempt budget runs out,
// then escalate to a permanent failure. Permanent failures never retry.
func Attempt(ctx context.Context, client Client, req Request, policy RetryPolicy) Outcome {
	policy = policy.normalized()
	req.State = RequestPending
	req.RetryCount = 0
	if client == nil {
		req.State = RequestFailedPermanent
		return Outcome{Request: req, Err: errors.New("remediation: no client configured")}
	}

	backoff := retry.NewExponential(policy.BaseDelay)
	if policy.MaxDelay > 0 {
		backoff = retry.WithCappedDuration(policy.MaxDelay, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(policy.MaxAttempts-1), backoff)

	attempts := 0
	var last Result
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		callCtx := ctx
		if policy.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, policy.CallTimeout)
			defer cancel()
		}
		last = client.Remediate(callCtx, req)
		if last.Success {
			return nil
		}
		if last.ErrorKind == ErrorKindTransient {
			if last.Err != nil {
				return retry.RetryableError(last.Err)
			}
			return retry.RetryableError(errTransient)
		}
		if last.Err != nil {
			return last.Err
		}
		return errors.New("remediation: permanent failure")
	})

	req.RetryCount = attempts - 1
	if req.RetryCount < 0 {
		req.RetryCount = 0
	}
	if err == nil {
		req.State = RequestSucceeded
		return Outcome{Request: req}
	}
	// A transient failure that exhausted the budget is escalated; only a
	// genuinely permanent backend answer keeps its original kind.
	req.State = RequestFailedPermanent
	return Outcome{Request: req, Err: err}
}
