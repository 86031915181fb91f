package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

var schema = []struct {
	name  string
	query string
}{
	{"quadras", `
	CREATE TABLE IF NOT EXISTS quadras (
		id CHAR(36) NOT NULL PRIMARY KEY,
		nome VARCHAR(120) NOT NULL,
		modalidade VARCHAR(60) NOT NULL,
		ativo TINYINT(1) NOT NULL DEFAULT 1
	)`},
	{"agendamentos", `
	CREATE TABLE IF NOT EXISTS agendamentos (
		id CHAR(36) NOT NULL PRIMARY KEY,
		quadra_id CHAR(36) NOT NULL,
		data DATE NOT NULL,
		hora_inicio VARCHAR(4) NOT NULL,
		hora_fim VARCHAR(4) NOT NULL,
		cliente VARCHAR(120) NULL,
		telefone VARCHAR(30) NULL,
		valor DECIMAL(12,2) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		FOREIGN KEY (quadra_id) REFERENCES quadras(id),
		INDEX idx_agendamentos_data (data, hora_inicio)
	)`},
	{"produtos", `
	CREATE TABLE IF NOT EXISTS produtos (
		id CHAR(36) NOT NULL PRIMARY KEY,
		nome VARCHAR(160) NOT NULL,
		preco DECIMAL(12,2) NOT NULL,
		unidade VARCHAR(20) NOT NULL DEFAULT 'UN',
		controle_estoque TINYINT(1) NOT NULL DEFAULT 1,
		ativo TINYINT(1) NOT NULL DEFAULT 1,
		estoque_atual DECIMAL(12,3) NOT NULL DEFAULT 0,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_produtos_nome (nome)
	)`},
	{"movimentacoes_estoque", `
	CREATE TABLE IF NOT EXISTS movimentacoes_estoque (
		id CHAR(36) NOT NULL PRIMARY KEY,
		seq BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		produto_id CHAR(36) NOT NULL,
		tipo VARCHAR(10) NOT NULL,
		quantidade DECIMAL(12,3) NOT NULL,
		motivo VARCHAR(255) NULL,
		created_at DATETIME(3) NOT NULL,
		FOREIGN KEY (produto_id) REFERENCES produtos(id),
		UNIQUE KEY uq_movimentacoes_seq (seq),
		INDEX idx_movimentacoes_produto (produto_id, seq)
	)`},
	{"comandas", `
	CREATE TABLE IF NOT EXISTS comandas (
		id CHAR(36) NOT NULL PRIMARY KEY,
		numero INT NOT NULL,
		mesa VARCHAR(60) NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'aberta',
		total DECIMAL(14,5) NOT NULL DEFAULT 0,
		fechada_em DATETIME(3) NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_comandas_numero_status (numero, status)
	)`},
	{"itens_comanda", `
	CREATE TABLE IF NOT EXISTS itens_comanda (
		id CHAR(36) NOT NULL PRIMARY KEY,
		comanda_id CHAR(36) NOT NULL,
		produto_id CHAR(36) NOT NULL,
		quantidade DECIMAL(12,3) NOT NULL,
		preco_unitario DECIMAL(12,2) NOT NULL,
		subtotal DECIMAL(14,5) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		FOREIGN KEY (comanda_id) REFERENCES comandas(id) ON DELETE CASCADE,
		FOREIGN KEY (produto_id) REFERENCES produtos(id),
		INDEX idx_itens_comanda (comanda_id)
	)`},
}

// Tables lists every table in dependency order.
func Tables() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, tbl := range schema {
		if _, err := db.ExecContext(ctx, tbl.query); err != nil {
			return fmt.Errorf("creating table %s: %w", tbl.name, err)
		}
	}
	return nil
}

// SeedCourts inserts the venue's default courts when none exist yet.
func SeedCourts(ctx context.Context, db *sql.DB) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quadras`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting courts: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	courts := []struct{ name, modality string }{
		{"Quadra 1", "volei"},
		{"Quadra 2", "beach_tenis"},
		{"Quadra 3", "futvolei"},
	}
	for _, c := range courts {
		_, err := db.ExecContext(ctx,
			`INSERT INTO quadras (id, nome, modalidade, ativo) VALUES (?, ?, ?, 1)`,
			uuid.New().String(), c.name, c.modality,
		)
		if err != nil {
			return false, fmt.Errorf("seeding court %s: %w", c.name, err)
		}
	}
	return true, nil
}
