package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result — исход одной задачи барьера: значение или ошибка.
type Result[T any] struct {
	Value T
	Err   error
}

// OK возвращает true, если задача завершилась без ошибки.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Task — единица работы барьера.
type Task[T any] func(ctx context.Context) (T, error)

// JoinOptions — параметры барьера.
type JoinOptions struct {
	// Limit — максимум одновременно выполняемых задач (0 — без ограничения).
	Limit int

	// OnSettled вызывается после завершения каждой задачи, в порядке завершения.
	// Вызывается из горутины задачи, поэтому должен быть потокобезопасным.
	OnSettled func(i int, err error)
}

// Join запускает все задачи, ждёт завершения каждой и возвращает результаты
// в порядке задач.
//
// Ошибка одной задачи не отменяет остальные: барьер никогда не "падает
// быстро", каждая задача получает исходный ctx. Паника в задаче
// превращается в ошибку ErrTaskPanic для этой задачи.
func Join[T any](ctx context.Context, tasks []Task[T], opts JoinOptions) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	// errgroup без WithContext: задачи возвращают nil, ошибки живут в results
	var g errgroup.Group
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			v, err := runTask(ctx, task)
			results[i] = Result[T]{Value: v, Err: err}
			if opts.OnSettled != nil {
				opts.OnSettled(i, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// runTask выполняет задачу, перехватывая панику.
func runTask[T any](ctx context.Context, task Task[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return task(ctx)
}

// Failed возвращает индексы задач, завершившихся ошибкой.
func Failed[T any](results []Result[T]) []int {
	var idx []int
	for i, r := range results {
		if r.Err != nil {
			idx = append(idx, i)
		}
	}
	return idx
}
