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

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/filter"
)

// ignoredTypes never show up in the type trees.
var ignoredTypes = map[int]bool{
	casestore.TypeGenInfo:        true,
	casestore.TypeDownloadSource: true,
	casestore.TypeTLEvent:        true,
}

type typeCount struct {
	artifactType casestore.ArtifactType
	count        int64
}

// typeCounts counts the artifacts per type of a category. The result is
// ordered by display name.
func typeCounts(ctx context.Context, store Store, category casestore.Category, dataSourceID int64) ([]typeCount, error) {
	if err := validDataSource(dataSourceID); err != nil {
		return nil, err
	}
	types := map[int64]casestore.ArtifactType{}
	var ids []int
	for _, at := range store.ArtifactTypes(category) {
		if ignoredTypes[at.ID] {
			continue
		}
		types[int64(at.ID)] = at
		ids = append(ids, at.ID)
	}

	e := filter.And{filter.In{Field: casestore.FieldArtifactTypeID, Values: filter.Ints(ids...)}}
	if dataSourceID > 0 {
		e = append(e, filter.Eq{Field: casestore.FieldDataSourceID, Value: dataSourceID})
	}
	groups, err := store.GroupArtifacts(ctx, casestore.Grouping{Keys: []string{casestore.FieldArtifactTypeID}}, e)
	if err != nil {
		return nil, execErr(category.String()+" counts", err)
	}

	var counts []typeCount
	for _, g := range groups {
		id, ok := g.Keys[0].(int64)
		if !ok {
			continue
		}
		counts = append(counts, typeCount{artifactType: types[id], count: g.Count})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].artifactType.DisplayName < counts[j].artifactType.DisplayName
	})
	return counts, nil
}

// AnalysisResultCounts returns one tree item per analysis result type with
// results in the data source.
func (d *AnalysisResultDAO) AnalysisResultCounts(ctx context.Context, dataSourceID int64) (*TreeResults[AnalysisResultSearchParam], error) {
	counts, err := typeCounts(ctx, d.store, casestore.AnalysisResult, dataSourceID)
	if err != nil {
		return nil, err
	}
	items := make([]TreeItem[AnalysisResultSearchParam], 0, len(counts))
	for _, c := range counts {
		items = append(items, TreeItem[AnalysisResultSearchParam]{
			TypeID:      casestore.AnalysisResult.String(),
			TypeData:    AnalysisResultSearchParam{ArtifactTypeID: c.artifactType.ID, DataSourceID: dataSourceID},
			ID:          c.artifactType.ID,
			DisplayName: c.artifactType.DisplayName,
			Count:       countOf(c.count),
		})
	}
	return &TreeResults[AnalysisResultSearchParam]{Items: items}, nil
}

/* ################################
#   Sets
################################ */

type setCount struct {
	name  NullString
	count int64
}

// groupKey converts a group key into a string. nil and blank keys are
// invalid.
func groupKey(v interface{}) NullString {
	if v == nil {
		return NullString{}
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if filter.IsBlank(s) {
		return NullString{}
	}
	return Some(s)
}

// setCounts counts the artifacts per set name. Artifacts without a set
// name form one group. Groups are ordered case insensitive with the group
// without a name first.
func setCounts(ctx context.Context, store Store, typeID int, dataSourceID int64) ([]setCount, error) {
	groups, err := store.GroupArtifacts(ctx,
		casestore.Grouping{Keys: []string{casestore.Attr(casestore.AttrSetName)}},
		typeFilter(typeID, dataSourceID))
	if err != nil {
		return nil, execErr("set counts", err)
	}

	var counts []setCount
	index := map[NullString]int{}
	for _, g := range groups {
		name := groupKey(g.Keys[0])
		if i, ok := index[name]; ok {
			counts[i].count += g.Count
			continue
		}
		index[name] = len(counts)
		counts = append(counts, setCount{name: name, count: g.Count})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return lessNull(counts[i].name, counts[j].name)
	})
	return counts, nil
}

// lessNull orders invalid strings first, then case insensitive and then
// by the raw string.
func lessNull(a, b NullString) bool {
	if a.Valid != b.Valid {
		return !a.Valid
	}
	return lessFold(a.String, b.String)
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// SetCounts returns one tree item per set of an analysis
// result type. Results without a set name are grouped under nullSetName
// and left out if nullSetName is invalid.
func (d *AnalysisResultDAO) SetCounts(ctx context.Context, typeID int, dataSourceID int64, nullSetName NullString) (*TreeResults[AnalysisResultSetSearchParam], error) {
	if err := validDataSource(dataSourceID); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, typeID, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	counts, err := setCounts(ctx, d.store, at.ID, dataSourceID)
	if err != nil {
		return nil, err
	}
	items := []TreeItem[AnalysisResultSetSearchParam]{}
	for _, c := range counts {
		item, ok := setItem(at, c, nullSetName)
		if !ok {
			continue
		}
		items = append(items, TreeItem[AnalysisResultSetSearchParam]{
			TypeID:      item.TypeID,
			TypeData:    AnalysisResultSetSearchParam{ArtifactTypeID: at.ID, DataSourceID: dataSourceID, SetName: c.name},
			ID:          item.ID,
			DisplayName: item.DisplayName,
			Count:       item.Count,
		})
	}
	return &TreeResults[AnalysisResultSetSearchParam]{Items: items}, nil
}

// HashHitSetCounts returns one tree item per hash set. Hits without a set
// name are left out.
func (d *AnalysisResultDAO) HashHitSetCounts(ctx context.Context, dataSourceID int64) (*TreeResults[HashHitSearchParam], error) {
	if err := validDataSource(dataSourceID); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, casestore.TypeHashsetHit, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	counts, err := setCounts(ctx, d.store, at.ID, dataSourceID)
	if err != nil {
		return nil, err
	}
	items := []TreeItem[HashHitSearchParam]{}
	for _, c := range counts {
		item, ok := setItem(at, c, NullString{})
		if !ok {
			continue
		}
		items = append(items, TreeItem[HashHitSearchParam]{
			TypeID:      item.TypeID,
			TypeData:    HashHitSearchParam{DataSourceID: dataSourceID, SetName: c.name},
			ID:          item.ID,
			DisplayName: item.DisplayName,
			Count:       item.Count,
		})
	}
	return &TreeResults[HashHitSearchParam]{Items: items}, nil
}

// KeywordSetCounts returns one tree item per keyword list. Hits without a
// list are grouped under nullSetName and left out if it is invalid.
func (d *AnalysisResultDAO) KeywordSetCounts(ctx context.Context, dataSourceID int64, nullSetName NullString) (*TreeResults[KeywordHitSearchParam], error) {
	if err := validDataSource(dataSourceID); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, casestore.TypeKeywordHit, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	counts, err := setCounts(ctx, d.store, at.ID, dataSourceID)
	if err != nil {
		return nil, err
	}
	items := []TreeItem[KeywordHitSearchParam]{}
	for _, c := range counts {
		item, ok := setItem(at, c, nullSetName)
		if !ok {
			continue
		}
		items = append(items, TreeItem[KeywordHitSearchParam]{
			TypeID:      item.TypeID,
			TypeData:    KeywordHitSearchParam{DataSourceID: dataSourceID, SetName: c.name},
			ID:          item.ID,
			DisplayName: item.DisplayName,
			Count:       item.Count,
		})
	}
	return &TreeResults[KeywordHitSearchParam]{Items: items}, nil
}

func setItem(at casestore.ArtifactType, c setCount, nullSetName NullString) (TreeItem[struct{}], bool) {
	item := TreeItem[struct{}]{TypeID: at.Name, Count: countOf(c.count)}
	switch {
	case c.name.Valid:
		item.ID = c.name.String
		item.DisplayName = c.name.String
	case nullSetName.Valid:
		item.DisplayName = nullSetName.String
	default:
		return item, false
	}
	return item, true
}

/* ################################
#   Keywords
################################ */

const keywordHitTypeName = "TSK_KEYWORD_HIT"

// KeywordSearchTermCounts returns one tree item per search term of a
// keyword list. A term has children if it matched more than one distinct
// keyword.
func (d *AnalysisResultDAO) KeywordSearchTermCounts(ctx context.Context, setName NullString, dataSourceID int64) (*TreeResults[KeywordSearchTermParams], error) {
	if err := validDataSource(dataSourceID); err != nil {
		return nil, err
	}
	e := filter.And{typeFilter(casestore.TypeKeywordHit, dataSourceID), setFilter(setName)}
	groups, err := d.store.GroupArtifacts(ctx, casestore.Grouping{
		Keys:     []string{casestore.FieldKeywordTerm, casestore.FieldKeywordSearchType},
		Distinct: casestore.Attr(casestore.AttrKeyword),
	}, e)
	if err != nil {
		return nil, execErr("keyword search term counts", err)
	}

	items := []TreeItem[KeywordSearchTermParams]{}
	for _, g := range groups {
		term := groupKey(g.Keys[0])
		if !term.Valid {
			continue
		}
		searchType := searchTypeOf(g.Keys[1])
		name := term.String
		if searchType == SubstringMatch {
			name += " (Substring)"
		}
		items = append(items, TreeItem[KeywordSearchTermParams]{
			TypeID: keywordHitTypeName,
			TypeData: KeywordSearchTermParams{
				KeywordHitSearchParam: KeywordHitSearchParam{
					DataSourceID: dataSourceID,
					SetName:      setName,
					SearchTerm:   term,
					SearchType:   searchType,
				},
				HasChildren: g.Distinct > 1,
			},
			ID:          KeywordTermID{Term: term.String, SearchType: searchType},
			DisplayName: name,
			Count:       countOf(g.Count),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].TypeData, items[j].TypeData
		if a.SearchTerm.String != b.SearchTerm.String {
			return lessFold(a.SearchTerm.String, b.SearchTerm.String)
		}
		return a.SearchType < b.SearchType
	})
	return &TreeResults[KeywordSearchTermParams]{Items: items}, nil
}

func searchTypeOf(v interface{}) KeywordSearchType {
	switch v := v.(type) {
	case int64:
		return KeywordSearchType(v)
	case float64:
		return KeywordSearchType(v)
	}
	return ExactMatch
}

// KeywordMatchCounts returns one tree item per keyword matched by a search
// term.
func (d *AnalysisResultDAO) KeywordMatchCounts(ctx context.Context, setName NullString, searchTerm string, searchType KeywordSearchType, dataSourceID int64) (*TreeResults[KeywordHitSearchParam], error) {
	key := KeywordHitSearchParam{DataSourceID: dataSourceID, SetName: setName, SearchTerm: Some(searchTerm), SearchType: searchType}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	e := filter.And{typeFilter(casestore.TypeKeywordHit, dataSourceID), keywordFilter(key)}
	groups, err := d.store.GroupArtifacts(ctx, casestore.Grouping{Keys: []string{casestore.Attr(casestore.AttrKeyword)}}, e)
	if err != nil {
		return nil, execErr("keyword match counts", err)
	}

	items := []TreeItem[KeywordHitSearchParam]{}
	for _, g := range groups {
		keyword := groupKey(g.Keys[0])
		if !keyword.Valid {
			continue
		}
		data := key
		data.Keyword = keyword
		items = append(items, TreeItem[KeywordHitSearchParam]{
			TypeID:      keywordHitTypeName,
			TypeData:    data,
			ID:          keyword.String,
			DisplayName: keyword.String,
			Count:       countOf(g.Count),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return lessFold(items[i].DisplayName, items[j].DisplayName)
	})
	return &TreeResults[KeywordHitSearchParam]{Items: items}, nil
}
