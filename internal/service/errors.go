package service

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrMediaNotFound     = errors.New("媒体对象不存在")
	ErrObjectNotFound    = errors.New("存储对象不存在")
	ErrInvalidMediaInput = errors.New("媒体类型或扩展名不满足要求")
	ErrStream            = errors.New("数据流读写失败")
	ErrSubprocess        = errors.New("外部编码进程执行失败")
	ErrPersistence       = errors.New("目录写入失败")
	ErrAlreadyExists     = errors.New("唯一字段已存在")
	ErrFileNotSupported  = errors.New("不支持的文件类型")
	ErrTranscodeBusy     = errors.New("该对象已有转码任务进行中")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrMediaNotFound:     NotFound,
	ErrObjectNotFound:    NotFound,
	ErrInvalidMediaInput: BadRequest,
	ErrStream:            InternalServerError,
	ErrSubprocess:        InternalServerError,
	ErrPersistence:       InternalServerError,
	ErrAlreadyExists:     Conflict,
	ErrFileNotSupported:  BadRequest,
	ErrTranscodeBusy:     Conflict,
	UnExpectedError:      InternalServerError,
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
