package filename

import (
	crand "crypto/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(crand.Reader, 0)
)

// NewID 生成文件 ID：时间戳在前、随机后缀在后的小写 ULID，同一毫秒内单调递增.
func NewID() string {
	return NewIDAt(time.Now())
}

// NewIDAt 以指定时间生成文件 ID.
func NewIDAt(t time.Time) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyMu.Unlock()

	return strings.ToLower(id.String())
}

const clientSuffixLen = 6

// NewClientID 生成客户端文件 ID：{unix 毫秒}-{6 位 base36 随机后缀}.
// 只用于 SDK 在上传前自行分配 ID，服务端缺省 ID 使用 NewIDAt.
func NewClientID(t time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	buf := make([]byte, clientSuffixLen)
	if _, err := crand.Read(buf); err != nil {
		panic(err)
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + string(buf)
}
