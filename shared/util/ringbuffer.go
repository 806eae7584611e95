package util

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrRingFull indica que o produtor alcançou o consumidor.
	ErrRingFull = errors.New("buffer circular cheio")
	// ErrRingEmpty indica que não há itens pendentes.
	ErrRingEmpty = errors.New("buffer circular vazio")
)

// RingBuffer é um buffer circular lock-free para um produtor e um consumidor.
// Usado para entregar eventos do feed da goroutine de leitura para a thread
// de render sem bloquear nenhum dos lados.
type RingBuffer[T any] struct {
	entries    []T
	mask       uint64
	producerID uint64
	consumerID uint64
}

// NewRingBuffer cria um buffer com a capacidade dada (arredondada para potência de 2).
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	actualCap := nextPowerOfTwo(capacity)
	return &RingBuffer[T]{
		entries: make([]T, actualCap),
		mask:    uint64(actualCap - 1),
	}
}

// Enqueue adiciona um item ao buffer. Retorna ErrRingFull se estiver cheio.
func (r *RingBuffer[T]) Enqueue(item T) error {
	next := atomic.LoadUint64(&r.producerID)
	consumer := atomic.LoadUint64(&r.consumerID)

	if next-consumer >= uint64(len(r.entries)) {
		return ErrRingFull
	}

	r.entries[next&r.mask] = item
	atomic.AddUint64(&r.producerID, 1)
	return nil
}

// Dequeue remove um item do buffer. Retorna ErrRingEmpty se estiver vazio.
func (r *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	consumer := atomic.LoadUint64(&r.consumerID)
	producer := atomic.LoadUint64(&r.producerID)

	if consumer >= producer {
		return zero, ErrRingEmpty
	}

	item := r.entries[consumer&r.mask]
	r.entries[consumer&r.mask] = zero // Não reter ponteiros já consumidos
	atomic.AddUint64(&r.consumerID, 1)
	return item, nil
}

// Len retorna a quantidade de itens pendentes.
func (r *RingBuffer[T]) Len() int {
	return int(atomic.LoadUint64(&r.producerID) - atomic.LoadUint64(&r.consumerID))
}

func nextPowerOfTwo(x int) int {
	res := 2
	for res < x {
		res <<= 1
	}
	return res
}
