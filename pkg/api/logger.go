package api

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogError LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
)

// String 返回日志级别字符串
func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "ERROR"
	case LogWarn:
		return "WARN"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel 解析配置文件中的日志级别（大小写不敏感）
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogError, nil
	case "warn", "warning":
		return LogWarn, nil
	case "", "info":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	}
	return LogInfo, NewError(ErrCodeConfig, fmt.Sprintf("unknown log level %q", s), nil)
}

// Logger 日志接口
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// logSink 同一输出的所有 logger 共享一把锁，避免多行交错
type logSink struct {
	mu     sync.Mutex
	level  LogLevel
	output io.Writer
}

// DefaultLogger 默认日志实现，输出格式为 "[LEVEL] component: message"
type DefaultLogger struct {
	sink      *logSink
	component string
}

// NewDefaultLogger 创建默认日志，输出到 stderr（stdout 留给命令结果）
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return NewDefaultLoggerWithOutput(level, os.Stderr)
}

// NewDefaultLoggerWithOutput 创建带输出的默认日志
func NewDefaultLoggerWithOutput(level LogLevel, output io.Writer) *DefaultLogger {
	return &DefaultLogger{sink: &logSink{level: level, output: output}}
}

// WithComponent 返回共享级别和输出、但带组件前缀的子日志
func (l *DefaultLogger) WithComponent(component string) *DefaultLogger {
	return &DefaultLogger{sink: l.sink, component: component}
}

// SetLevel 设置日志级别，对所有子日志生效
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// GetLevel 获取日志级别
func (l *DefaultLogger) GetLevel() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.log(LogDebug, format, args...)
}

func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.log(LogInfo, format, args...)
}

func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.log(LogWarn, format, args...)
}

func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.log(LogError, format, args...)
}

// log 实际日志输出
func (l *DefaultLogger) log(level LogLevel, format string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if level > l.sink.level {
		return
	}

	message := fmt.Sprintf(format, args...)
	if l.component != "" {
		fmt.Fprintf(l.sink.output, "[%s] %s: %s\n", level.String(), l.component, message)
		return
	}
	fmt.Fprintf(l.sink.output, "[%s] %s\n", level.String(), message)
}

// NoOpLogger 空日志实现（用于禁用日志）
type NoOpLogger struct{}

// NewNoOpLogger 创建空日志
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(format string, args ...interface{}) {}
func (l *NoOpLogger) Info(format string, args ...interface{})  {}
func (l *NoOpLogger) Warn(format string, args ...interface{})  {}
func (l *NoOpLogger) Error(format string, args ...interface{}) {}
func (l *NoOpLogger) SetLevel(level LogLevel)                  {}
func (l *NoOpLogger) GetLevel() LogLevel                       { return LogInfo }
