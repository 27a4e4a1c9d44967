// Copyright 2026 Tamyla
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


package search

import "errors"

var (
	// ErrGatewayRequired is returned when a metadata gateway is not provided.
	ErrGatewayRequired = errors.New("metadata gateway required")

	// ErrQueueRequired is returned when a retry queue is not provided.
	ErrQueueRequired = errors.New("retry queue required")

	// ErrNoBackends is returned when no search backend is configured.
	ErrNoBackends = errors.New("no search backends configured")

	// ErrUnknownEngine is returned when a query names an engine that is not
	// configured.
	ErrUnknownEngine = errors.New("unknown search engine")
)
