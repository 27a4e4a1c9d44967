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


// Package hybrid implements analysis.Provider with a two-tier strategy.
//
// A rule-based pass always runs: it extracts entities with pattern
// matching, derives topics from keyword frequency, and computes enrichment
// signals such as language, sentiment and readability. The pass is
// deterministic and has no external dependencies, so it always produces a
// usable result.
//
// On top of that, a policy decides per file whether to also consult a
// remote language model through an OpenAI-compatible API. Small files,
// oversized files, low-priority work and an exhausted daily budget all skip
// the remote tier. When the model is consulted its output is merged over
// the rule-based result; when it fails for any reason the rule-based result
// is returned unchanged. The remote tier can therefore only improve a
// result, never lose one.
package hybrid
