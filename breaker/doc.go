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


// Package breaker provides per-dependency circuit breakers for external
// service calls.
//
// A breaker moves between three states. Closed passes calls through and
// counts consecutive failures. When failures reach the configured threshold
// the breaker opens and rejects calls until the recovery timeout elapses.
// The first call after the timeout runs as a half-open trial: success closes
// the circuit, failure re-opens it and restarts the recovery window.
//
// Calls may carry a fallback. When the circuit rejects a call, or the
// underlying operation fails, the fallback result is returned instead of an
// error, which lets callers degrade gracefully during outages.
//
// A Registry hands out one breaker per named dependency so that all callers
// touching the same dependency share failure state.
package breaker
