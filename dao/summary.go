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
	"sort"
	"strings"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/filter"
)

// excludedKeywordSets are keyword lists of the case setup, they are not
// part of the summary.
var excludedKeywordSets = map[string]bool{
	"PHONE NUMBERS":       true,
	"IP ADDRESSES":        true,
	"EMAIL ADDRESSES":     true,
	"URLS":                true,
	"CREDIT CARD NUMBERS": true,
}

var interestingItemTypes = []int{casestore.TypeInterestingFileHit, casestore.TypeInterestingArtifactHit}

// AnalysisSummary counts the hits per set of a data source.
type AnalysisSummary struct {
	store Store
}

// HashsetCounts returns the number of hash set hits per set, the largest
// set first.
func (s *AnalysisSummary) HashsetCounts(ctx context.Context, dataSourceID int64) ([]AnalysisCountRecord, error) {
	return s.counts(ctx, dataSourceID, nil, casestore.TypeHashsetHit)
}

// KeywordCounts returns the number of keyword hits per list, the largest
// list first. The default lists are left out.
func (s *AnalysisSummary) KeywordCounts(ctx context.Context, dataSourceID int64) ([]AnalysisCountRecord, error) {
	return s.counts(ctx, dataSourceID, excludedKeywordSets, casestore.TypeKeywordHit)
}

// InterestingItemCounts returns the number of interesting file and result
// hits per set, the largest set first.
func (s *AnalysisSummary) InterestingItemCounts(ctx context.Context, dataSourceID int64) ([]AnalysisCountRecord, error) {
	return s.counts(ctx, dataSourceID, nil, interestingItemTypes...)
}

// IsRefreshRequired tells if evt can change a summary.
func (s *AnalysisSummary) IsRefreshRequired(evt casestore.Event) bool {
	e, ok := evt.(casestore.ModuleDataEvent)
	if !ok {
		return false
	}
	switch e.ArtifactTypeID {
	case casestore.TypeHashsetHit, casestore.TypeKeywordHit, casestore.TypeInterestingFileHit, casestore.TypeInterestingArtifactHit:
		return true
	}
	return false
}

// counts groups the artifacts of types by set name. Artifacts without a
// set name are skipped. Sets with equal counts keep the order in which
// they were first seen.
func (s *AnalysisSummary) counts(ctx context.Context, dataSourceID int64, excluded map[string]bool, types ...int) ([]AnalysisCountRecord, error) {
	if err := validDataSource(dataSourceID); err != nil {
		return nil, err
	}
	records := []AnalysisCountRecord{}
	if dataSourceID == 0 {
		return records, nil
	}

	e := filter.And{
		filter.In{Field: casestore.FieldArtifactTypeID, Values: filter.Ints(types...)},
		filter.Eq{Field: casestore.FieldDataSourceID, Value: dataSourceID},
	}
	groups, err := s.store.GroupArtifacts(ctx, casestore.Grouping{Keys: []string{casestore.Attr(casestore.AttrSetName)}}, e)
	if err != nil {
		return nil, execErr("analysis summary", err)
	}

	index := map[string]int{}
	for _, g := range groups {
		name := groupKey(g.Keys[0])
		if !name.Valid {
			continue
		}
		if excluded[strings.ToUpper(strings.TrimSpace(name.String))] {
			continue
		}
		if i, ok := index[name.String]; ok {
			records[i].Count += g.Count
			if g.FirstID < records[i].ArtifactID {
				records[i].ArtifactID = g.FirstID
			}
			continue
		}
		index[name.String] = len(records)
		records = append(records, AnalysisCountRecord{Identifier: name.String, Count: g.Count, ArtifactID: g.FirstID})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Count > records[j].Count })
	return records, nil
}
