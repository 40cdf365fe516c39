package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey 唯一约束冲突：并发创建同一条记录时由存储层返回
var ErrDuplicateKey = errors.New("记录已存在（唯一约束冲突）")

// IsDuplicateKey 判断 err 是否为唯一约束冲突
// 依次识别：GORM 翻译后的错误 → PostgreSQL SQLSTATE 23505 → SQLite/通用错误文本
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

// TranslateDuplicate 将唯一约束冲突统一转换为 ErrDuplicateKey，其余错误原样返回
func TranslateDuplicate(err error) error {
	if IsDuplicateKey(err) {
		return ErrDuplicateKey
	}
	return err
}
