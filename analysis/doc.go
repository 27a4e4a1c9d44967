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


// Package analysis provides the content-analysis provider abstraction and
// the engine that drives it.
//
// This package defines the Provider interface for pluggable analysis
// implementations and an Engine that runs file content through an ordered
// provider chain. It follows the dependency inversion principle: the
// processing pipeline depends on this abstraction, never on a concrete
// analysis service.
//
// # Provider Chain
//
// The Engine holds providers in configuration order. For each file it skips
// providers that do not support the file's MIME type and tries the rest in
// order; the first successful result wins. A provider failure is recorded
// and the chain continues, so a broken primary provider degrades service
// rather than halting it. Only when every capable provider has failed does
// the Engine return an error, wrapping the last provider failure.
//
// # Result Cache
//
// Results are cached in a bounded LRU keyed by a BLAKE2b fingerprint of the
// file content and MIME type. Re-processing an unchanged file (duplicate
// event delivery, infrastructure retry) is answered from the cache without
// invoking any provider. Cached results are copied on the way out so
// callers may annotate them freely.
//
// # Implementation Packages
//
//   - analysis/hybrid: production provider combining rule-based extraction
//     with a policy-gated remote language model
//   - analysis/mock: test doubles for unit testing without real analysis
//
// # Usage Example
//
//	provider, err := hybrid.NewProvider(hybrid.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := analysis.NewEngine([]analysis.Provider{provider})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.AnalyzeFile(ctx, content, "text/plain")
package analysis
