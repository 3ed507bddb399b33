package products

import (
	"math/rand/v2"
	"sync"
)

// Sampler picks up to n products from items without replacement.
// Implementations must not modify items.
type Sampler func(n int, items []Product) []Product

// RandomSampler samples using the package level generator
func RandomSampler() Sampler {
	return sample(rand.Perm)
}

// SeededSampler samples with a caller supplied generator, used for deterministic tests
func SeededSampler(r *rand.Rand) Sampler {
	var lock sync.Mutex
	return sample(func(n int) []int {
		lock.Lock()
		defer lock.Unlock()
		return r.Perm(n)
	})
}

func sample(perm func(int) []int) Sampler {
	return func(n int, items []Product) []Product {
		if n <= 0 || len(items) == 0 {
			return []Product{}
		}
		if n > len(items) {
			n = len(items)
		}
		picked := make([]Product, 0, n)
		for _, i := range perm(len(items))[:n] {
			picked = append(picked, items[i])
		}
		return picked
	}
}
