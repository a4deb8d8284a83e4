package parser

import (
	"fmt"
	"strings"

	"github.com/Kaguya154/dbbridge/types"
)

// ParseMySQLDescriptor 解析 host:user:password:database 形式的 MySQL 连接串。
// 必须恰好四段；不支持冒号转义，密码含冒号时返回错误而不是错误拆分。
func ParseMySQLDescriptor(s string) (types.MySQLConfig, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return types.MySQLConfig{}, fmt.Errorf("mysql descriptor must be host:user:password:database, got %d fields", len(parts))
	}
	return types.MySQLConfig{
		Host:     parts[0],
		User:     parts[1],
		Password: parts[2],
		Database: parts[3],
	}, nil
}
