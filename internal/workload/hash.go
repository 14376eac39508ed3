package workload

import "github.com/cespare/xxhash/v2"

// Hasher 为排程中的伪随机回退提供确定性的哈希值
type Hasher func(seed string) uint32

// StringHash 是默认的 Hasher，同样的输入永远得到同样的结果，不依赖任何随机源
func StringHash(seed string) uint32 {
	return uint32(xxhash.Sum64String(seed))
}
