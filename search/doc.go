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


// Package search fans analysis results out to the configured search
// backends and routes queries back to them.
//
// A Backend is one search engine behind the shared capability interface
// (upsert, delete, query, ping). The Syncer subscribes to the pipeline's
// terminal events: completed analyses become SearchDocuments delivered to
// every backend through the retry queue, failed analyses are recorded on
// the metadata store. Engine implementations live in the httpengine,
// badgerengine and redisengine subpackages.
package search
