package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirestore initializes the Firebase Admin SDK from inline credentials JSON
// or, when that is empty, a credentials file, and returns a Firestore client
func InitFirestore(ctx context.Context, credentialsJSON, credentialsPath string) (*firestore.Client, error) {
	var raw []byte
	var opt option.ClientOption
	if credentialsJSON != "" {
		raw = []byte(credentialsJSON)
		opt = option.WithCredentialsJSON(raw)
	} else {
		var err error
		raw, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials: %w", err)
		}
		opt = option.WithCredentialsFile(credentialsPath)
	}

	projectID, err := projectIDFromCredentials(raw)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	return app.Firestore(ctx)
}

func projectIDFromCredentials(raw []byte) (string, error) {
	var creds struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return "", fmt.Errorf("parse firebase credentials: %w", err)
	}
	if creds.ProjectID == "" {
		return "", fmt.Errorf("firebase credentials missing project_id")
	}
	return creds.ProjectID, nil
}
