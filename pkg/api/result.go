package api

import "fmt"

// Result 命令执行结果
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// String 返回结果摘要
func (r *Result) String() string {
	return fmt.Sprintf("Result: RowsAffected=%d, LastInsertID=%d", r.RowsAffected, r.LastInsertID)
}

// QueryResult 查询结果，行按列顺序保存
// 文本和 BLOB 列统一为 string，整数为 int64，浮点为 float64，NULL 为 nil
type QueryResult struct {
	Columns []string
	Rows    [][]interface{}
}

// Total 返回行数
func (r *QueryResult) Total() int {
	return len(r.Rows)
}

// Column 返回指定列的全部值，列不存在时返回 false
func (r *QueryResult) Column(name string) ([]interface{}, bool) {
	idx := -1
	for i, c := range r.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]interface{}, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out, true
}
