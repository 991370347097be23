package redisx

import "fmt"

const ProductTTLSeconds = 300

func ProductKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}
