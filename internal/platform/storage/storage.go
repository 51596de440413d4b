// Package storage はバックアップ先媒体（USB/NAS）との境界を定義する。
// 実体の検出・マウント・コピー処理は外部コラボレータの責務で、
// 本体側はこのインターフェース越しに状態確認と実行指示だけを行う。
package storage

import "context"

type Status struct {
	Connected bool   `json:"connected"`
	Writable  bool   `json:"writable"`
	Path      string `json:"path,omitempty"`
	Message   string `json:"message,omitempty"`
}

type StatusProvider interface {
	IsWritable() bool
	// BackupDirectory はコピー先ディレクトリを返す。利用不可なら ok=false。
	BackupDirectory() (path string, ok bool)
	Status() Status
}

type Orchestrator interface {
	CreateBackupNow(ctx context.Context) (ok bool, message string, path string)
}

// Reporter は直近のバックアップ情報を返せるオーケストレータ用の追加契約。
type Reporter interface {
	LastBackup() (filename string, modified string, ok bool)
}

// Unavailable は媒体未設定時に使うスタブ。常に利用不可を報告する。
type Unavailable struct{}

func (Unavailable) IsWritable() bool                { return false }
func (Unavailable) BackupDirectory() (string, bool) { return "", false }

func (Unavailable) Status() Status {
	return Status{Connected: false, Writable: false, Message: "バックアップ媒体が設定されていません"}
}

func (Unavailable) CreateBackupNow(ctx context.Context) (bool, string, string) {
	return false, "バックアップ媒体が利用できません", ""
}
