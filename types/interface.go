package types

import "context"

// Adapter 单个数据库引擎的连接契约。
// 生命周期：创建（未连接）-> Connect -> ExecuteQuery ... -> Disconnect（不可再用）
type Adapter interface {
	// Connect 建立底层连接，失败返回 ErrConnectionFailed
	Connect(ctx context.Context) error
	// Disconnect 释放底层连接；未连接时为空操作，释放失败返回 ErrDisconnectFailed
	Disconnect(ctx context.Context) error
	// ExecuteQuery 执行语句：读语句返回结果行，写语句返回影响行数
	ExecuteQuery(ctx context.Context, sql string, params ...any) (*Rows, error)
	Engine() Engine
}
