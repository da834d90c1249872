package builtin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FunctionType 函数类型
type FunctionType int

const (
	FunctionTypeScalar FunctionType = iota // 标量函数
	FunctionTypeAggregate                  // 聚合函数
)

// FunctionCategory groups functions for listing.
type FunctionCategory string

const (
	CategorySpatial FunctionCategory = "spatial"
	CategoryMBR     FunctionCategory = "mbr"
)

// FunctionSignature 函数签名
type FunctionSignature struct {
	Name       string
	ReturnType string
	ParamTypes []string
	Variadic   bool // 是否可变参数
}

// FunctionHandle 函数处理函数
type FunctionHandle func(args []interface{}) (interface{}, error)

// FunctionInfo 函数信息
type FunctionInfo struct {
	Name        string
	Aliases     []string
	Type        FunctionType
	Signatures  []FunctionSignature
	Handler     FunctionHandle
	Description string
	Example     string
	Category    FunctionCategory
	// Deterministic functions return the same result for the same arguments
	// and may be constant-folded by the host engine.
	Deterministic bool
}

// ArgRange returns the smallest and largest argument counts accepted by any
// signature. max is -1 when a signature is variadic without bound.
func (f *FunctionInfo) ArgRange() (min, max int) {
	min = -1
	for _, s := range f.Signatures {
		n := len(s.ParamTypes)
		if min < 0 || n < min {
			min = n
		}
		if s.Variadic {
			max = -1
		} else if max >= 0 && n > max {
			max = n
		}
	}
	if min < 0 {
		min = 0
	}
	return min, max
}

// FunctionRegistry 函数注册表，名称大小写不敏感
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]*FunctionInfo
}

// NewFunctionRegistry 创建函数注册表
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]*FunctionInfo),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}

// Register 注册函数（包括其别名）
func (r *FunctionRegistry) Register(info *FunctionInfo) error {
	if info == nil {
		return fmt.Errorf("function info cannot be nil")
	}
	if info.Name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if info.Handler == nil {
		return fmt.Errorf("function handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.functions[normalizeName(info.Name)] = info
	for _, alias := range info.Aliases {
		r.functions[normalizeName(alias)] = info
	}
	return nil
}

// Get 获取函数
func (r *FunctionRegistry) Get(name string) (*FunctionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.functions[normalizeName(name)]
	return info, exists
}

// Names returns every registered name, aliases included, sorted.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List 列出所有函数（别名不重复列出），按名称排序
func (r *FunctionRegistry) List() []*FunctionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*FunctionInfo]bool, len(r.functions))
	list := make([]*FunctionInfo, 0, len(r.functions))
	for _, info := range r.functions {
		if !seen[info] {
			seen[info] = true
			list = append(list, info)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// ListByCategory 按类别列出函数
func (r *FunctionRegistry) ListByCategory(category FunctionCategory) []*FunctionInfo {
	list := make([]*FunctionInfo, 0)
	for _, info := range r.List() {
		if info.Category == category {
			list = append(list, info)
		}
	}
	return list
}

// Exists 检查函数是否存在
func (r *FunctionRegistry) Exists(name string) bool {
	_, exists := r.Get(name)
	return exists
}

// Unregister 注销函数及其所有别名
func (r *FunctionRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.functions[normalizeName(name)]
	if !exists {
		return false
	}
	for key, other := range r.functions {
		if other == info {
			delete(r.functions, key)
		}
	}
	return true
}

// Call looks up name and invokes it after checking the argument count.
func (r *FunctionRegistry) Call(name string, args ...interface{}) (interface{}, error) {
	info, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown function %s", name)
	}
	min, max := info.ArgRange()
	if len(args) < min || (max >= 0 && len(args) > max) {
		return nil, argCountError(info.Name, min, max, len(args))
	}
	return info.Handler(args)
}

// 全局函数注册表
var globalRegistry = NewFunctionRegistry()

// GetGlobalRegistry 获取全局函数注册表
func GetGlobalRegistry() *FunctionRegistry {
	return globalRegistry
}

// RegisterGlobal 注册全局函数
func RegisterGlobal(info *FunctionInfo) error {
	return globalRegistry.Register(info)
}

// GetGlobal 获取全局函数
func GetGlobal(name string) (*FunctionInfo, bool) {
	return globalRegistry.Get(name)
}
