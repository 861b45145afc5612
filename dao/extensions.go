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

package dao

// FileExtFilter is a named group of file extensions.
type FileExtFilter int

// Extension filters. The first seven are the roots of the file type tree,
// the document filters are the children of ExtDocuments.
const (
	ExtImages FileExtFilter = iota
	ExtVideos
	ExtAudio
	ExtArchives
	ExtDatabases
	ExtDocuments
	ExtExecutables
	ExtDocHTML
	ExtDocOffice
	ExtDocPDF
	ExtDocPlainText
	ExtDocRichText
)

var (
	imageExtensions      = []string{"jpg", "jpeg", "png", "psd", "nef", "tiff", "bmp", "tec", "tif", "webp"}
	videoExtensions      = []string{"aaf", "3gp", "asf", "avi", "m1v", "m2v", "m4v", "mp4", "mov", "mpeg", "mpg", "mpe", "rm", "wmv", "mpv", "flv", "swf"}
	audioExtensions      = []string{"aiff", "aif", "flac", "wav", "m4a", "ape", "wma", "mp2", "mp1", "mp3", "aac", "mp4", "m4p", "m1a", "m2a", "m4r", "mpa", "m3u", "mid", "midi", "ogg"}
	documentExtensions   = []string{"htm", "html", "doc", "docx", "odt", "xls", "xlsx", "ppt", "pptx", "pdf", "txt", "rtf"}
	executableExtensions = []string{"exe", "msi", "cmd", "com", "bat", "reg", "scr", "dll", "ini"}
	textExtensions       = []string{"txt", "rtf", "log", "text", "xml"}
	webExtensions        = []string{"html", "htm", "css", "js", "php", "aspx"}
	pdfExtensions        = []string{"pdf"}
	archiveExtensions    = []string{"zip", "rar", "7zip", "7z", "arj", "tar", "gzip", "bzip", "bzip2", "cab", "jar", "cpio", "ar", "gz", "tgz", "bz2"}
	databaseExtensions   = []string{"db", "db3", "sqlite", "sqlite3"}
)

type extFilter struct {
	name       string
	extensions []string
}

var extFilters = map[FileExtFilter]extFilter{
	ExtImages:       {"Images", imageExtensions},
	ExtVideos:       {"Videos", videoExtensions},
	ExtAudio:        {"Audio", audioExtensions},
	ExtArchives:     {"Archives", archiveExtensions},
	ExtDatabases:    {"Databases", databaseExtensions},
	ExtDocuments:    {"Documents", documentExtensions},
	ExtExecutables:  {"Executable", executableExtensions},
	ExtDocHTML:      {"HTML", []string{"htm", "html"}},
	ExtDocOffice:    {"Office", []string{"doc", "docx", "odt", "xls", "xlsx", "ppt", "pptx"}},
	ExtDocPDF:       {"PDF", pdfExtensions},
	ExtDocPlainText: {"Plain Text", []string{"txt"}},
	ExtDocRichText:  {"Rich Text", []string{"rtf"}},
}

// RootExtFilters are the top level extension filters.
var RootExtFilters = []FileExtFilter{ExtImages, ExtVideos, ExtAudio, ExtArchives, ExtDatabases, ExtDocuments, ExtExecutables}

// DocumentExtFilters are the children of ExtDocuments.
var DocumentExtFilters = []FileExtFilter{ExtDocHTML, ExtDocOffice, ExtDocPDF, ExtDocPlainText, ExtDocRichText}

// DisplayName returns the name of the filter.
func (f FileExtFilter) DisplayName() string {
	return extFilters[f].name
}

// Extensions returns the lower case extensions without dot.
func (f FileExtFilter) Extensions() []string {
	return extFilters[f].extensions
}

// ExtensionMediaType is the kind of media an extension stands for.
type ExtensionMediaType string

// Media types.
const (
	MediaImage         ExtensionMediaType = "IMAGE"
	MediaVideo         ExtensionMediaType = "VIDEO"
	MediaAudio         ExtensionMediaType = "AUDIO"
	MediaDoc           ExtensionMediaType = "DOC"
	MediaExecutable    ExtensionMediaType = "EXECUTABLE"
	MediaText          ExtensionMediaType = "TEXT"
	MediaWeb           ExtensionMediaType = "WEB"
	MediaPDF           ExtensionMediaType = "PDF"
	MediaArchive       ExtensionMediaType = "ARCHIVE"
	MediaUncategorized ExtensionMediaType = "UNCATEGORIZED"
)

var mediaTypes = []struct {
	mediaType  ExtensionMediaType
	extensions []string
}{
	{MediaImage, imageExtensions},
	{MediaVideo, videoExtensions},
	{MediaAudio, audioExtensions},
	{MediaDoc, documentExtensions},
	{MediaExecutable, executableExtensions},
	{MediaText, textExtensions},
	{MediaWeb, webExtensions},
	{MediaPDF, pdfExtensions},
	{MediaArchive, archiveExtensions},
}

// MediaTypeOf returns the media type of a lower case extension without
// dot. The first matching list wins.
func MediaTypeOf(ext string) ExtensionMediaType {
	if ext == "" {
		return MediaUncategorized
	}
	for _, m := range mediaTypes {
		for _, e := range m.extensions {
			if e == ext {
				return m.mediaType
			}
		}
	}
	return MediaUncategorized
}
