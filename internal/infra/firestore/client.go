// Package firestore はドキュメントDB（Cloud Firestore）版のカート・操作ログ保存先。
//
// carts/{userID}/items/{productID} に明細を1ドキュメントずつ置く。
// user_activities に操作ログを置く。
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// credentialsFile が空ならADC（またはFIRESTORE_EMULATOR_HOST）を使う。
func NewClient(ctx context.Context, projectID string, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient failed (project=%s): %w", projectID, err)
	}
	return client, nil
}
