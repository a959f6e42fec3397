// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bulk

import (
	"context"
	"math/big"

	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/broadcast"
	"github.com/H3imdall-dev/Dogecoin-Tools/dogecoin/wallet"
)

// Job is one recipient/count pair within a (possibly multi-recipient)
// bulk mint. For a file-inscribe run, Items holds one Item per file, in
// order; a RunRecord is persisted when the Controller's RecordDir is set.
type Job struct {
	Address string
	Count   int
	Items   []Item // length Count; Items[i].Payload/ContentType drive the i'th inscription.
}

// Controller drives the wave state machine across one or more Jobs
// against a single wallet.
type Controller struct {
	RPC          client
	Broadcast    broadcastClient
	Wallet       *wallet.Wallet
	WalletLabel  string
	FeeRatePerKB *big.Int
	RecordDir    string // set to enable RunRecord persistence (file-inscribe mode).
}

// JobResult is the outcome of RunJobs for one Job.
type JobResult struct {
	Address   string
	Outcomes  []WaveOutcome
	RunRecord *RunRecord // non-nil only when ctrl.RecordDir is set.
}

// RunJobs processes jobs sequentially, running each through the wave
// state machine: WAVE -> WAIT_CONFIRM -> SYNC -> WAVE normally, or
// WAVE -> DELETE_PENDING -> SYNC -> TEST_WAVE -> (WAIT_CONFIRM | WAVE)
// after a chain-limit hit. RunJobs computes no grand total across jobs
// and reports no progress of its own; each JobResult carries only that
// job's outcomes.
func (ctrl *Controller) RunJobs(ctx context.Context, jobs []Job, label string, startedAt string) ([]JobResult, error) {
	results := make([]JobResult, 0, len(jobs))

	for _, job := range jobs {
		result, err := ctrl.runJob(ctx, job, label, startedAt)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

func (ctrl *Controller) runJob(ctx context.Context, job Job, label, startedAt string) (JobResult, error) {
	result := JobResult{Address: job.Address}

	var record *RunRecord
	if ctrl.RecordDir != "" {
		record = NewRunRecord(ctrl.RecordDir, label, job.Address, job.Count, startedAt)
		result.RunRecord = record
	}

	remaining := job.Items
	for len(remaining) > 0 {
		waveSize := MaxWaveSize
		if waveSize > len(remaining) {
			waveSize = len(remaining)
		}
		wave := remaining[:waveSize]

		outcomes, interruptedItem, err := RunWave(ctrl.Broadcast, ctrl.Wallet, job.Address, ctrl.FeeRatePerKB, wave)
		result.Outcomes = append(result.Outcomes, outcomes...)
		if recordErr := ctrl.recordOutcomes(record, outcomes, ModeNormal); recordErr != nil {
			return result, recordErr
		}
		remaining = remaining[len(outcomes):]

		if err != nil {
			ctrl.finishRecord(record, startedAt, err)

			return result, err
		}

		if interruptedItem == nil {
			if len(remaining) > 0 {
				if err := ctrl.waitThenSync(ctx); err != nil {
					ctrl.finishRecord(record, startedAt, err)

					return result, err
				}
			}

			continue
		}

		// Chain-limit branch: DELETE_PENDING -> SYNC -> TEST_WAVE.
		if err := broadcast.RemoveJournal(ctrl.Wallet.PendingJournalPath()); err != nil {
			return result, err
		}
		if err := SyncUTXOs(ctrl.RPC, ctrl.Wallet); err != nil {
			return result, err
		}

		if record != nil && len(interruptedItem.SentTxIDs) > 0 {
			if recovered := ctrl.recoverInterrupted(interruptedItem); recovered != nil {
				result.Outcomes = append(result.Outcomes, *recovered)
				if recordErr := ctrl.recordOutcomes(record, []WaveOutcome{*recovered}, ModeMempoolRecovery); recordErr != nil {
					return result, recordErr
				}
			}
		}

		if len(remaining) == 0 {
			continue
		}

		testOutcomes, testInterrupted, err := RunWave(ctrl.Broadcast, ctrl.Wallet, job.Address, ctrl.FeeRatePerKB, remaining[:1])
		result.Outcomes = append(result.Outcomes, testOutcomes...)
		if recordErr := ctrl.recordOutcomes(record, testOutcomes, ModeNormal); recordErr != nil {
			return result, recordErr
		}
		remaining = remaining[len(testOutcomes):]
		if err != nil {
			ctrl.finishRecord(record, startedAt, err)

			return result, err
		}

		if testInterrupted != nil {
			if err := ctrl.waitThenSync(ctx); err != nil {
				ctrl.finishRecord(record, startedAt, err)

				return result, err
			}
		}
	}

	if record != nil {
		_ = record.Finish(startedAt, ctrl.Wallet.Balance().String(), nil)
	}

	return result, nil
}

// waitThenSync implements WAIT_CONFIRM -> SYNC.
func (ctrl *Controller) waitThenSync(ctx context.Context) error {
	if _, err := WaitForConfirmation(ctx, ctrl.RPC, ctrl.Wallet.Address(), ctrl.WalletLabel); err != nil {
		return err
	}

	return SyncUTXOs(ctrl.RPC, ctrl.Wallet)
}

// recoverInterrupted resolves the reveal txid for a file-inscribe item
// that a chain-limit error broke off mid-chain: it walks input history
// backwards from the item's own known-good (commit) transaction to find
// the genesis-looking ancestor, then scans the wallet's recent
// transactions for the one that actually spent it.
func (ctrl *Controller) recoverInterrupted(interrupted *InterruptedItem) *WaveOutcome {
	knownGoodTxID := interrupted.SentTxIDs[len(interrupted.SentTxIDs)-1]

	recent, err := ctrl.RPC.ListTransactions("*", 1000, 0)
	if err != nil {
		return nil
	}

	recentTxIDs := make([]string, len(recent))
	for i, tx := range recent {
		recentTxIDs[i] = tx.TxID
	}

	revealTxID, err := RecoverRevealTxID(ctrl.RPC, knownGoodTxID, recentTxIDs)
	if err != nil {
		return nil
	}

	return &WaveOutcome{
		Item:       interrupted.Item,
		RevealTxID: revealTxID,
		CommitTxID: interrupted.SentTxIDs[0],
	}
}

// recordOutcomes appends outcomes to record (a no-op when record is nil)
// under the given mode.
func (ctrl *Controller) recordOutcomes(record *RunRecord, outcomes []WaveOutcome, mode string) error {
	if record == nil {
		return nil
	}

	for _, o := range outcomes {
		if err := record.AppendResult(RunResult{
			File:          o.Item.File,
			InscriptionID: o.RevealTxID + "i0",
			Mode:          mode,
			TxID:          o.RevealTxID,
		}); err != nil {
			return err
		}
	}

	return nil
}

// finishRecord finalizes record as errored (a no-op when record is
// nil), swallowing the persistence error since the caller is already
// propagating a more important one.
func (ctrl *Controller) finishRecord(record *RunRecord, startedAt string, cause error) {
	if record == nil {
		return
	}

	_ = record.Finish(startedAt, "", cause)
}
