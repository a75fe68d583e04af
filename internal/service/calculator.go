package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const (
	calcReplyTooBig        = "Число или шаг слишком велики"
	calcReplyNothingToSay  = "Нет чисел для счёта."
	calcReplyNotUnderstood = "Не поняла пример. Повторите, пожалуйста."
	calcReplyZeroDivision  = "Нельзя делить на ноль"
	calcReplyResultTooBig  = "Результат слишком большой"
)

var (
	errZeroDivision  = errors.New("division by zero")
	errBadExpression = errors.New("bad expression")

	stepCountRe = regexp.MustCompile(`посчитай до (\d+) через (\d+)`)

	// x or х only multiplies between digits: "5x3", "2 х 4"
	multiplySignRe = regexp.MustCompile(`(\d)\s*[xх]\s*(\d)`)

	operatorWords = strings.NewReplacer(
		"умножить на", " * ",
		"умножь на", " * ",
		"разделить на", " / ",
		"раздели на", " / ",
		"плюс", " + ",
		"минус", " - ",
		"×", " * ",
		"+", " + ",
		"-", " - ",
		"*", " * ",
		"/", " / ",
	)
)

type CalculatorService interface {
	// CountSteps says the multiples of a step up to a limit.
	CountSteps(ctx context.Context, call *entity.Call) error
	// Calculate evaluates a spoken arithmetic expression left to right.
	Calculate(ctx context.Context, call *entity.Call) error
}

type calculatorService struct {
	conf config.Calculator
}

func NewCalculatorService(conf config.Calculator) CalculatorService {
	return &calculatorService{conf: conf}
}

func (that *calculatorService) CountSteps(ctx context.Context, call *entity.Call) error {
	fields := pkg.ReplaceNumberWords(strings.Fields(pkg.NormalizePhrase(call.Utterance)))

	match := stepCountRe.FindStringSubmatch(strings.Join(fields, " "))
	if match == nil {
		return that.Calculate(ctx, call)
	}

	end, _ := strconv.Atoi(match[1])
	step, _ := strconv.Atoi(match[2])

	if end > that.conf.MaxNumber || step <= 0 {
		return call.Say(ctx, calcReplyTooBig)
	}

	var numbers []string
	for current := step; current <= end; current += step {
		numbers = append(numbers, strconv.Itoa(current))
	}

	if len(numbers) == 0 {
		return call.Say(ctx, calcReplyNothingToSay)
	}

	return call.Say(ctx, strings.Join(numbers, ", ")+".")
}

func (that *calculatorService) Calculate(ctx context.Context, call *entity.Call) error {
	result, err := Evaluate(call.Args)
	switch {
	case errors.Is(err, errZeroDivision):
		return call.Say(ctx, calcReplyZeroDivision)
	case err != nil:
		return call.Say(ctx, calcReplyNotUnderstood)
	}

	if math.Abs(result) > that.conf.MaxResult {
		return call.Say(ctx, calcReplyResultTooBig)
	}

	return call.Say(ctx, FormatNumber(result))
}

// Evaluate computes "десять плюс пять и минус три" strictly left to right.
func Evaluate(expression string) (float64, error) {
	spaced := operatorWords.Replace(expandMultiplySigns(pkg.NormalizePhrase(expression)))
	fields := pkg.ReplaceNumberWords(strings.Fields(spaced))

	var (
		result    float64
		operator  string
		hasResult bool
	)

	for _, field := range fields {
		switch field {
		case "+", "-", "*", "/", "x", "х":
			if !hasResult || operator != "" {
				return 0, errBadExpression
			}

			operator = field

			continue
		case "и":
			continue
		}

		number, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}

		if !hasResult {
			result, hasResult = number, true
			continue
		}

		if operator == "" {
			return 0, errBadExpression
		}

		if result, err = apply(result, operator, number); err != nil {
			return 0, err
		}

		operator = ""
	}

	if !hasResult || operator != "" {
		return 0, errBadExpression
	}

	return result, nil
}

// expandMultiplySigns repeats the replacement so chains like "2x3x4" share their middle digits.
func expandMultiplySigns(phrase string) string {
	for {
		next := multiplySignRe.ReplaceAllString(phrase, "$1 * $2")
		if next == phrase {
			return phrase
		}

		phrase = next
	}
}

func apply(left float64, operator string, right float64) (float64, error) {
	switch operator {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "/":
		if right == 0 {
			return 0, errZeroDivision
		}

		return left / right, nil
	default:
		return left * right, nil
	}
}

// FormatNumber drops the fraction of whole numbers and rounds the rest to six places.
func FormatNumber(value float64) string {
	value = math.Round(value*1e6) / 1e6
	if value == math.Trunc(value) {
		return strconv.FormatInt(int64(value), 10)
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}
