package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/mq"
)

// handleRunRequested обрабатывает команду из очереди runs.requested.
//
// Некорректные команды и команды, пришедшие во время запуска того же вида,
// подтверждаются и логируются: повторная доставка их не исправит.
func (o *Orchestrator) handleRunRequested(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RunRequestedPayload](&delivery.Message)
	if err != nil {
		o.logger.Error("failed to parse run.requested payload", "error", err)
		return nil
	}

	cmd, err := commandFromPayload(payload)
	if err != nil {
		o.logger.Warn("invalid run command", "message_id", delivery.Message.ID, "error", err)
		return nil
	}

	o.logger.Debug("received run command", "kind", cmd.Kind, "mode", cmd.Mode)

	if err := o.Submit(ctx, cmd); err != nil {
		if IsValidation(err) || errors.Is(err, ErrRunInProgress) {
			o.logger.Warn("run command rejected", "kind", cmd.Kind, "reason", err)
			return nil
		}
		return err
	}
	return nil
}

// commandFromPayload переводит payload очереди в Command.
func commandFromPayload(p mq.RunRequestedPayload) (Command, error) {
	kind, ok := domain.ParseRunKind(p.Kind)
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}

	mode, ok := domain.ParseProcessingMode(p.Mode)
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
	}

	return Command{
		Kind:        kind,
		Prompt:      p.Prompt,
		Mode:        mode,
		Instruction: p.Instruction,
	}, nil
}
