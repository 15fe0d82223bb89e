package types

import (
	"fmt"
	"strings"
)

// RegionCode prefixes every identifier produced for the Shaoguan dataset.
const RegionCode = "SG"

// IdentifierColumn is the column that carries the assigned identifier.
const IdentifierColumn = "唯一编码"

// Canonical column names shared by the cleaners, the identifier generator,
// the validator and the prompt assembler.
const (
	ColName          = "名称"
	ColStoreName     = "店名"
	ColMainType      = "主类型"
	ColTicket        = "门票(元)"
	ColTicketMin     = "门票最低(元)"
	ColTicketMax     = "门票最高(元)"
	ColFeature       = "景点特色说明"
	ColOpenHours     = "开放时间段"
	ColAvgSpend      = "人均消费"
	ColSpendMin      = "人均最低(元)"
	ColSpendMax      = "人均最高(元)"
	ColSignatureDish = "特色菜"
	ColFoodType      = "类型"
	ColHeritageSite  = "传承地"
	ColHeritageType  = "类别"
	ColLevel         = "级别"
	ColRemarks       = "备注"
)

// Category is one of the three fixed partitions of the dataset.
type Category string

const (
	CategoryAttractions Category = "attractions"
	CategoryFood        Category = "food"
	CategoryCulture     Category = "culture"
)

// Categories lists every category in processing order.
var Categories = []Category{CategoryAttractions, CategoryFood, CategoryCulture}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryAttractions, CategoryFood, CategoryCulture:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// TypeCode is the single letter identifying the category inside an identifier.
func (c Category) TypeCode() string {
	switch c {
	case CategoryAttractions:
		return "A"
	case CategoryFood:
		return "F"
	case CategoryCulture:
		return "C"
	}
	return ""
}

// NameColumn is the column whose value is fingerprinted.
func (c Category) NameColumn() string {
	if c == CategoryFood {
		return ColStoreName
	}
	return ColName
}

// SubtypeColumn is the column resolved against the subtype vocabulary.
func (c Category) SubtypeColumn() string {
	switch c {
	case CategoryAttractions:
		return ColMainType
	case CategoryFood:
		return ColFoodType
	case CategoryCulture:
		return ColHeritageType
	}
	return ""
}

// RequiredColumns are the fields the validator expects to be complete.
func (c Category) RequiredColumns() []string {
	switch c {
	case CategoryAttractions:
		return []string{ColName, ColMainType, ColTicketMin}
	case CategoryFood:
		return []string{ColStoreName, ColAvgSpend, ColFoodType}
	case CategoryCulture:
		return []string{ColName, ColHeritageType, ColLevel}
	}
	return nil
}

func (c Category) String() string { return string(c) }
