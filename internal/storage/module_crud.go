package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveModule stores rec, replacing any earlier record with the same name.
// The stored id is returned; it differs from rec.ID when the name existed.
func (p *PostgresClient) SaveModule(ctx context.Context, rec ModuleRecord) (uuid.UUID, error) {
	mechJSON, err := json.Marshal(rec.Mechanical)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal mechanical: %w", err)
	}

	steerJSON, err := json.Marshal(rec.Steer)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal steer: %w", err)
	}

	var id uuid.UUID
	err = p.pool.QueryRow(ctx, `
		INSERT INTO swerve_modules (id, module_name, builder, mechanical, steer, drive_port, drive_bus, steer_bus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (module_name) DO UPDATE SET
			builder    = EXCLUDED.builder,
			mechanical = EXCLUDED.mechanical,
			steer      = EXCLUDED.steer,
			drive_port = EXCLUDED.drive_port,
			drive_bus  = EXCLUDED.drive_bus,
			steer_bus  = EXCLUDED.steer_bus,
			updated_at = now()
		RETURNING id
	`, rec.ID, rec.ModuleName, rec.Builder, mechJSON, steerJSON, rec.DrivePort, rec.DriveBus, rec.SteerBus).Scan(&id)

	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save module %s: %w", rec.ModuleName, err)
	}

	return id, nil
}

// LoadModules returns every stored module ordered by name.
func (p *PostgresClient) LoadModules(ctx context.Context) ([]ModuleRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, module_name, builder, mechanical, steer, drive_port, drive_bus, steer_bus, created_at, updated_at
		FROM swerve_modules
		ORDER BY module_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	records := make([]ModuleRecord, 0)

	for rows.Next() {
		var rec ModuleRecord
		var mechJSON, steerJSON []byte

		err := rows.Scan(
			&rec.ID,
			&rec.ModuleName,
			&rec.Builder,
			&mechJSON,
			&steerJSON,
			&rec.DrivePort,
			&rec.DriveBus,
			&rec.SteerBus,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}

		if err := json.Unmarshal(mechJSON, &rec.Mechanical); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mechanical: %w", err)
		}

		if err := json.Unmarshal(steerJSON, &rec.Steer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steer: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modules: %w", err)
	}

	return records, nil
}

// LoadModule returns the module stored under name.
func (p *PostgresClient) LoadModule(ctx context.Context, name string) (*ModuleRecord, error) {
	var rec ModuleRecord
	var mechJSON, steerJSON []byte

	err := p.pool.QueryRow(ctx, `
		SELECT id, module_name, builder, mechanical, steer, drive_port, drive_bus, steer_bus, created_at, updated_at
		FROM swerve_modules
		WHERE module_name = $1
	`, name).Scan(
		&rec.ID,
		&rec.ModuleName,
		&rec.Builder,
		&mechJSON,
		&steerJSON,
		&rec.DrivePort,
		&rec.DriveBus,
		&rec.SteerBus,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("module not found: %s", name)
		}
		return nil, fmt.Errorf("failed to load module: %w", err)
	}

	if err := json.Unmarshal(mechJSON, &rec.Mechanical); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mechanical: %w", err)
	}

	if err := json.Unmarshal(steerJSON, &rec.Steer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steer: %w", err)
	}

	return &rec, nil
}

// DeleteModule removes a module and its setpoint history.
func (p *PostgresClient) DeleteModule(ctx context.Context, name string) error {
	result, err := p.pool.Exec(ctx, `
		DELETE FROM swerve_modules
		WHERE module_name = $1
	`, name)

	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// RecordSetpoint appends a commanded setpoint to the module's history.
func (p *PostgresClient) RecordSetpoint(ctx context.Context, moduleID uuid.UUID, driveVoltage, steerAngle float64) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO swerve_setpoints (module_id, drive_voltage, steer_angle)
		VALUES ($1, $2, $3)
	`, moduleID, driveVoltage, steerAngle)

	if err != nil {
		return fmt.Errorf("failed to record setpoint: %w", err)
	}

	return nil
}

// LoadSetpoints returns the newest setpoints of a module, newest first.
func (p *PostgresClient) LoadSetpoints(ctx context.Context, moduleID uuid.UUID, limit int) ([]Setpoint, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, module_id, drive_voltage, steer_angle, created_at
		FROM swerve_setpoints
		WHERE module_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, moduleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query setpoints: %w", err)
	}
	defer rows.Close()

	setpoints := make([]Setpoint, 0)
	for rows.Next() {
		var sp Setpoint
		if err := rows.Scan(&sp.ID, &sp.ModuleID, &sp.DriveVoltage, &sp.SteerAngle, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setpoint: %w", err)
		}
		setpoints = append(setpoints, sp)
	}

	return setpoints, rows.Err()
}
