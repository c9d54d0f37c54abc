package ingest

import "fmt"

// InputPathError 输入路径不可用：不是 .csv 文件或不是普通文件。
type InputPathError struct {
	Path   string
	Reason string
}

func (e *InputPathError) Error() string {
	return fmt.Sprintf("input path %s: %s", e.Path, e.Reason)
}
