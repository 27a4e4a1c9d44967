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

import (
	"github.com/tamylaa/content-skimmer/core"
)

// MarshalDocument serializes a SearchDocument to bytes.
func MarshalDocument(doc *core.SearchDocument) []byte {
	buf := make([]byte, core.SearchDocumentMUS.Size(*doc))
	core.SearchDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a SearchDocument from bytes.
func UnmarshalDocument(data []byte) (*core.SearchDocument, error) {
	doc, _, err := core.SearchDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
