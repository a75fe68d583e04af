package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

type CounterService interface {
	CountUp(ctx context.Context, call *entity.Call) error
	CountDown(ctx context.Context, call *entity.Call) error
}

type counterService struct {
	conf config.Counter
}

func NewCounterService(conf config.Counter) CounterService {
	return &counterService{conf: conf}
}

func (that *counterService) CountUp(ctx context.Context, call *entity.Call) error {
	number, ok := pkg.ParseNumber(call.Args)
	if !ok || number == 0 {
		return call.Say(ctx, "Скажите: посчитай до [число]")
	}

	if !that.inRange(number) {
		return call.Say(ctx, that.rangeReply())
	}

	if err := call.Say(ctx, "Хорошо"); err != nil {
		return err
	}

	for i := 1; i <= number; i++ {
		if err := call.Say(ctx, strconv.Itoa(i)); err != nil {
			return err
		}

		if err := that.pause(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (that *counterService) CountDown(ctx context.Context, call *entity.Call) error {
	number, ok := pkg.ParseNumber(call.Args)
	if !ok || number == 0 {
		return call.Say(ctx, "Скажите: посчитай от [число]")
	}

	if !that.inRange(number) {
		return call.Say(ctx, that.rangeReply())
	}

	for i := number; i > 0; i-- {
		if err := call.Say(ctx, strconv.Itoa(i)); err != nil {
			return err
		}

		if err := that.pause(ctx); err != nil {
			return err
		}
	}

	return call.Say(ctx, "0")
}

func (that *counterService) inRange(number int) bool {
	return number > 0 && number <= that.conf.MaxNumber
}

func (that *counterService) rangeReply() string {
	return fmt.Sprintf("Число должно быть от 1 до %d", that.conf.MaxNumber)
}

func (that *counterService) pause(ctx context.Context) error {
	if that.conf.Pause <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(that.conf.Pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
