package util

import (
	"sync"
	"testing"
)

func TestRingBufferFIFO(t *testing.T) {
	rb := NewRingBuffer[int](8)

	for i := 0; i < 5; i++ {
		if err := rb.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if rb.Len() != 5 {
		t.Fatalf("Len = %d, esperado 5", rb.Len())
	}

	for i := 0; i < 5; i++ {
		got, err := rb.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue #%d: %v", i, err)
		}
		if got != i {
			t.Errorf("Dequeue #%d = %d, deveria preservar a ordem", i, got)
		}
	}
	if rb.Len() != 0 {
		t.Errorf("Len = %d após drenar, esperado 0", rb.Len())
	}
}

func TestRingBufferFull(t *testing.T) {
	rb := NewRingBuffer[string](4)

	for i := 0; i < 4; i++ {
		if err := rb.Enqueue("x"); err != nil {
			t.Fatalf("Enqueue #%d: %v", i, err)
		}
	}
	if err := rb.Enqueue("estouro"); err != ErrRingFull {
		t.Errorf("Enqueue em buffer cheio: err = %v, esperado ErrRingFull", err)
	}

	// Consumir um libera espaço para o produtor.
	if _, err := rb.Dequeue(); err != nil {
		t.Fatal(err)
	}
	if err := rb.Enqueue("cabe"); err != nil {
		t.Errorf("Enqueue após Dequeue: %v", err)
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer[int](4)
	if _, err := rb.Dequeue(); err != ErrRingEmpty {
		t.Errorf("Dequeue em buffer vazio: err = %v, esperado ErrRingEmpty", err)
	}
}

func TestRingBufferRoundsCapacity(t *testing.T) {
	// Capacidade 5 arredonda para 8: cabem 8 itens antes de encher.
	rb := NewRingBuffer[int](5)
	for i := 0; i < 8; i++ {
		if err := rb.Enqueue(i); err != nil {
			t.Fatalf("Enqueue #%d: %v", i, err)
		}
	}
	if err := rb.Enqueue(8); err != ErrRingFull {
		t.Errorf("nono item deveria estourar: err = %v", err)
	}
}

func TestRingBufferWrapsAround(t *testing.T) {
	rb := NewRingBuffer[int](4)

	// Vários ciclos de enche-esvazia atravessam o limite do slice subjacente.
	next := 0
	for cycle := 0; cycle < 10; cycle++ {
		for i := 0; i < 3; i++ {
			if err := rb.Enqueue(next); err != nil {
				t.Fatal(err)
			}
			next++
		}
		for i := 0; i < 3; i++ {
			got, err := rb.Dequeue()
			if err != nil {
				t.Fatal(err)
			}
			if got != next-3+i {
				t.Fatalf("ciclo %d: Dequeue = %d, esperado %d", cycle, got, next-3+i)
			}
		}
	}
}

func TestRingBufferSingleProducerSingleConsumer(t *testing.T) {
	const total = 10000
	rb := NewRingBuffer[int](64)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if err := rb.Enqueue(i); err == nil {
				i++
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			got, err := rb.Dequeue()
			if err != nil {
				continue
			}
			if got != i {
				t.Errorf("consumidor viu %d, esperado %d", got, i)
				return
			}
			i++
		}
	}()

	wg.Wait()
}
