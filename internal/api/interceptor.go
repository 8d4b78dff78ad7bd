package api

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLoggingInterceptor logs every unary call with its outcome and latency.
// Server-side failures log at error level, client-caused ones at warn.
func NewLoggingInterceptor(logger *zap.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			fields := []zap.Field{
				zap.String("procedure", req.Spec().Procedure),
				zap.Duration("duration", time.Since(start)),
			}
			if peer := req.Peer().Addr; peer != "" {
				fields = append(fields, zap.String("peer", peer))
			}

			if err == nil {
				logger.Debug("rpc completed", fields...)
				return res, nil
			}

			code := connect.CodeOf(err)
			fields = append(fields, zap.String("code", code.String()), zap.Error(err))
			logger.Check(levelFor(code), "rpc failed").Write(fields...)
			return res, err
		}
	}
}

func levelFor(code connect.Code) zapcore.Level {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
