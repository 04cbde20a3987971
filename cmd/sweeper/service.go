package main

import (
	"context"
	"time"
)

type OrphanSweeper interface {
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration)
}
