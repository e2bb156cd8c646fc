package shardserver

import (
	"encoding/binary"
	"strconv"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/rpc"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphlab_shard_requests_total",
			Help: "Shard server requests handled, by command and object kind.",
		},
		[]string{"cmd", "obj"},
	)
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphlab_shard_errors_total",
			Help: "Shard server replies carrying a non-OK error code, by code.",
		},
		[]string{"code"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, errorsTotal)
}

// instrument wraps h to count every dispatched (cmd, obj) request and, by
// peeking at the error code every handler writes as its first four reply
// bytes (see writeHeader), every non-OK reply by code — ErrorCode's stable
// numeric taxonomy doubles as a metrics label.
func instrument(cmd Cmd, obj Obj, h rpc.Handler) rpc.Handler {
	cmdLabel := strconv.Itoa(int(cmd))
	objLabel := strconv.Itoa(int(obj))
	return func(body *codec.Reader, w *codec.Writer) error {
		requestsTotal.WithLabelValues(cmdLabel, objLabel).Inc()
		if err := h(body, w); err != nil {
			return err
		}
		if b := w.Bytes(); len(b) >= 4 {
			if code := binary.LittleEndian.Uint32(b[:4]); code != uint32(OK) {
				errorsTotal.WithLabelValues(strconv.FormatUint(uint64(code), 10)).Inc()
			}
		}
		return nil
	}
}
