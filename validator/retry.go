package validator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/cenkalti/backoff/v4"
)

// callWithRetry runs one live-resource fetch with exactly one bounded retry
// with backoff for transient throttling. A genuine not-found is terminal and
// never retried; retrying it would only delay the missing-dependency report.
func (v *AWSValidator) callWithRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isThrottle(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, 1), ctx))
}

// throttleCodes are the transient API error codes worth one retry.
var throttleCodes = map[string]bool{
	"Throttling":               true,
	"ThrottlingException":      true,
	"RequestLimitExceeded":     true,
	"TooManyRequestsException": true,
}

func isThrottle(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && throttleCodes[apiErr.ErrorCode()] {
		return true
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusTooManyRequests {
		return true
	}
	return false
}

// notFoundError marks resources reported missing through response payloads
// (ECS describe failures) rather than API errors.
type notFoundError struct {
	resource string
	name     string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.resource, e.name)
}

// isNotFound distinguishes the expected absent-resource outcome from
// transport failures. Absence is not exceptional here.
func isNotFound(err error) bool {
	var nfe *notFoundError
	if errors.As(err, &nfe) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchEntity", "NoSuchBucket", "NotFound", "ResourceNotFoundException", "ClusterNotFoundException":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
