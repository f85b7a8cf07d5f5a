package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"researcher-agent-go/internal/model"
)

// 识别的列名（大小写不敏感）
const (
	colName           = "name"
	colSpecialization = "specialization"
	colAffiliation    = "affiliation"
	colInterests      = "research interests"
	colPublications   = "publications"
	colEmail          = "email"
	colPhone          = "phone"
	colLocation       = "location"
)

// ImportResult 导入结果
type ImportResult struct {
	Records []model.ResearcherRecord
	Skipped int // 因缺少Name被跳过的行数
}

// Import 解析CSV为researcher fragment列表
// 未知列忽略；Name为空的行跳过并警告；列表列按逗号拆分
func Import(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// 允许行之间列数不一致，短行按空处理
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// 列名 → 列序号
	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := columns[colName]; !ok {
		return nil, fmt.Errorf("CSV file has no Name column")
	}

	result := &ImportResult{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("[CSV Importer] skipping malformed line %d: %v", line, err)
			result.Skipped++
			continue
		}

		field := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := field(colName)
		if name == "" {
			log.Printf("[CSV Importer] skipping line %d: empty Name", line)
			result.Skipped++
			continue
		}

		rec := model.ResearcherRecord{
			Name:              name,
			Specialization:    field(colSpecialization),
			Affiliation:       field(colAffiliation),
			Email:             field(colEmail),
			Phone:             field(colPhone),
			Location:          field(colLocation),
			ResearchInterests: splitList(field(colInterests)),
			Source:            model.SourceCSV,
		}
		for _, title := range splitList(field(colPublications)) {
			rec.Publications = append(rec.Publications, model.Publication{Title: title})
		}

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

// splitList 把引号内逗号分隔的列表列拆成字符串切片
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// FindByName 在导入的记录中按名字查找
// 先精确匹配（忽略大小写），再子串匹配，与原始查找语义一致
func FindByName(records []model.ResearcherRecord, name string) *model.ResearcherRecord {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}

	for i := range records {
		if strings.ToLower(records[i].Name) == lower {
			return &records[i]
		}
	}
	for i := range records {
		if strings.Contains(strings.ToLower(records[i].Name), lower) {
			return &records[i]
		}
	}
	return nil
}
