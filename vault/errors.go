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


package vault

import "errors"

var (
	// ErrDuplicate indicates a note for this fingerprint already exists.
	// Not a failure: the caller receives the existing record alongside
	// it and treats the item as already handled.
	ErrDuplicate = errors.New("note already exists for fingerprint")

	// ErrStorage indicates a vault write failure (permissions, disk,
	// path). Retryable at the writer level.
	ErrStorage = errors.New("vault storage failure")

	// ErrRootRequired is returned when a writer is created without a
	// vault root path.
	ErrRootRequired = errors.New("vault root required")

	// ErrIndexRequired is returned when a writer is created without a
	// note index.
	ErrIndexRequired = errors.New("note index required")
)
