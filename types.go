/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

package casestore

import "fmt"

// Category separates extracted data from analysis results.
type Category int

const (
	// DataArtifact is extracted data, e.g. web history.
	DataArtifact Category = iota
	// AnalysisResult is the outcome of an analysis, e.g. a hash set hit.
	AnalysisResult
)

func (c Category) String() string {
	switch c {
	case DataArtifact:
		return "DATA_ARTIFACT"
	case AnalysisResult:
		return "ANALYSIS_RESULT"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ArtifactType describes a kind of artifact.
type ArtifactType struct {
	ID          int      `json:"type_id"`
	Name        string   `json:"type_name"`
	DisplayName string   `json:"display_name"`
	Category    Category `json:"category"`
}

// Builtin artifact type ids.
const (
	TypeGenInfo                = 1
	TypeWebBookmark            = 2
	TypeWebCookie              = 3
	TypeWebHistory             = 4
	TypeWebDownload            = 5
	TypeRecentObject           = 6
	TypeInstalledProg          = 8
	TypeKeywordHit             = 9
	TypeHashsetHit             = 10
	TypeDeviceAttached         = 11
	TypeInterestingFileHit     = 12
	TypeEmailMsg               = 13
	TypeContact                = 23
	TypeMessage                = 24
	TypeCallLog                = 25
	TypeInterestingArtifactHit = 40
	TypeEncryptionDetected     = 42
	TypeExtMismatchDetected    = 43
	TypeTLEvent                = 45
	TypeDownloadSource         = 57

	// firstCustomType is the id of the first user defined type.
	firstCustomType = 10000
)

var builtinTypes = []ArtifactType{
	{TypeGenInfo, "TSK_GEN_INFO", "General Info", DataArtifact},
	{TypeWebBookmark, "TSK_WEB_BOOKMARK", "Web Bookmarks", DataArtifact},
	{TypeWebCookie, "TSK_WEB_COOKIE", "Web Cookies", DataArtifact},
	{TypeWebHistory, "TSK_WEB_HISTORY", "Web History", DataArtifact},
	{TypeWebDownload, "TSK_WEB_DOWNLOAD", "Web Downloads", DataArtifact},
	{TypeRecentObject, "TSK_RECENT_OBJECT", "Recent Documents", DataArtifact},
	{TypeInstalledProg, "TSK_INSTALLED_PROG", "Installed Programs", DataArtifact},
	{TypeKeywordHit, "TSK_KEYWORD_HIT", "Keyword Hits", AnalysisResult},
	{TypeHashsetHit, "TSK_HASHSET_HIT", "Hashset Hits", AnalysisResult},
	{TypeDeviceAttached, "TSK_DEVICE_ATTACHED", "USB Device Attached", DataArtifact},
	{TypeInterestingFileHit, "TSK_INTERESTING_FILE_HIT", "Interesting Files", AnalysisResult},
	{TypeEmailMsg, "TSK_EMAIL_MSG", "E-Mail Messages", DataArtifact},
	{TypeContact, "TSK_CONTACT", "Contacts", DataArtifact},
	{TypeMessage, "TSK_MESSAGE", "Messages", DataArtifact},
	{TypeCallLog, "TSK_CALLLOG", "Call Logs", DataArtifact},
	{TypeInterestingArtifactHit, "TSK_INTERESTING_ARTIFACT_HIT", "Interesting Results", AnalysisResult},
	{TypeEncryptionDetected, "TSK_ENCRYPTION_DETECTED", "Encryption Detected", AnalysisResult},
	{TypeExtMismatchDetected, "TSK_EXT_MISMATCH_DETECTED", "Extension Mismatch Detected", AnalysisResult},
	{TypeTLEvent, "TSK_TL_EVENT", "Timeline Events", DataArtifact},
	{TypeDownloadSource, "TSK_DOWNLOAD_SOURCE", "Download Source", DataArtifact},
}

// Attribute names used by the builtin types.
const (
	AttrSetName           = "set_name"
	AttrKeyword           = "keyword"
	AttrKeywordRegexp     = "keyword_regexp"
	AttrKeywordSearchType = "keyword_search_type"
	AttrKeywordPreview    = "keyword_preview"
	AttrHashMD5           = "hash_md5"
	AttrComment           = "comment"
)

// Logical filter fields. Attributes are addressed as "attr.<name>".
const (
	FieldArtifactID     = "artifact_id"
	FieldObjID          = "obj_id"
	FieldArtifactTypeID = "artifact_type_id"
	FieldDataSourceID   = "data_source_obj_id"
	FieldScore          = "score"
	FieldSourceName     = "source_name"
	// FieldKeywordTerm is the search term of a keyword hit: the regular
	// expression if present, otherwise the keyword.
	FieldKeywordTerm = "keyword_term"
	// FieldKeywordSearchType is the search type of a keyword hit, exact
	// match if absent.
	FieldKeywordSearchType = "keyword_search_type"

	FieldName       = "name"
	FieldParentPath = "parent_path"
	FieldExtension  = "extension"
	FieldMIMEType   = "mime_type"
	FieldSize       = "size"
	FieldDirType    = "dir_type"
	FieldType       = "type"
	FieldKnown      = "known"

	attributePrefix = "attr."
)

// Attr returns the filter field of an attribute.
func Attr(name string) string {
	return attributePrefix + name
}

// Significance is the score of an analysis result.
type Significance int

// Significance values.
const (
	SignificanceUnknown       Significance = 0
	SignificanceLikelyNone    Significance = 1
	SignificanceNone          Significance = 2
	SignificanceLikelyNotable Significance = 3
	SignificanceNotable       Significance = 4
)

// DisplayName returns the human readable score.
func (s Significance) DisplayName() string {
	switch s {
	case SignificanceLikelyNone:
		return "Likely Not Notable"
	case SignificanceNone:
		return "Not Notable"
	case SignificanceLikelyNotable:
		return "Likely Notable"
	case SignificanceNotable:
		return "Notable"
	}
	return "Unknown"
}

// FileType is the origin of a file.
type FileType int

// File types.
const (
	FileTypeFS FileType = iota
	FileTypeCarved
	FileTypeDerived
	FileTypeLocal
	FileTypeUnallocBlocks
	FileTypeUnusedBlocks
	FileTypeVirtualDir
	FileTypeSlack
	FileTypeLocalDir
	FileTypeLayout
)

// NameType is the directory entry type of a file.
type NameType int

// Name types.
const (
	NameTypeUndef NameType = 0
	NameTypeDir   NameType = 3
	NameTypeReg   NameType = 5
	NameTypeVirt  NameType = 10
)

// KnownState tells if a file is in a known or notable hash set.
type KnownState int

// Known states.
const (
	KnownUnknown KnownState = 0
	KnownKnown   KnownState = 1
	KnownBad     KnownState = 2
)

func (k KnownState) String() string {
	switch k {
	case KnownKnown:
		return "known"
	case KnownBad:
		return "notable"
	}
	return "unknown"
}

// Source object types of an artifact.
const (
	SourceFile     = "ABSTRACTFILE"
	SourceArtifact = "ARTIFACT"
)
