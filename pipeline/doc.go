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


// Package pipeline executes the per-file processing sequence: status
// transition, compatibility check, content acquisition, analysis,
// persistence and callbacks, with terminal domain events on the bus.
//
// Each ProcessFile invocation runs the sequence exactly once and converts
// any stage failure into a failure callback plus an analysis_failed event.
// Nothing is retried here; the caller's infrastructure owns redelivery.
package pipeline
