// Copyright (c) 2019 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum
// Author(s): Jonas Plum

// Package casestore can create, access and query case databases: the
// sqlite database of a forensic investigation that holds the data sources,
// their files and the blackboard of artifacts found in them.
//
// The casestore format
//
// The casestore format implements the following conventions:
//     - A casestore is a single sqlite file with application_id 1701602669.
//     - Artifacts are typed. The type decides the category (data artifact or analysis result).
//     - Artifact attributes are stored as a json object per artifact.
//     - Attributes must not have dots (".") in their json keys, a dotted path addresses nested attributes.
//     - Attributes of builtin analysis results are validated against a json schema.
//     - Every insert is announced on the event bus of the store.
//
// Tables
//
//     data_sources    one row per ingested piece of evidence
//     artifact_types  builtin and custom artifact types
//     files           content objects of the data sources
//     artifacts       the blackboard
package casestore
