// Copyright 2025 kenvexar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"time"
)

// TransientError marks a failure that may succeed on retry: network
// faults, timeouts, and 5xx-equivalent backend responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient enrichment error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// QuotaError marks a backend-reported limit, distinct from the local
// rate limiter. It is not retried blindly; RetryAfter, when non-zero,
// is the backend's suggested deferral.
type QuotaError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	return "enrichment quota exceeded: " + e.Err.Error()
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

// ValidationError marks rejected input or a backend response that cannot
// be parsed into an enrichment result. Never retried.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "enrichment validation error: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsQuota reports whether err is (or wraps) a QuotaError.
func IsQuota(err error) bool {
	var q *QuotaError
	return errors.As(err, &q)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// QuotaRetryAfter returns the backend's suggested deferral for a quota
// error, or zero when err is not a QuotaError or carries no suggestion.
func QuotaRetryAfter(err error) time.Duration {
	var q *QuotaError
	if errors.As(err, &q) {
		return q.RetryAfter
	}
	return 0
}
