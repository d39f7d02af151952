package cmd

import (
	"context"
	"fmt"
	"log"

	"cutroom/config"
	"cutroom/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the media bucket",
	Long:  `Connect to MinIO with the configured settings and list the objects in the media bucket, optionally under a prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO config: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		client := storage.GetMinioClient()
		ctx := context.Background()

		var count int
		var totalBytes int64
		for object := range client.ListObjects(ctx, storage.BucketName(), minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				log.Fatalf("Failed to list objects: %v", object.Err)
			}
			fmt.Printf("%12d  %s\n", object.Size, object.Key)
			count++
			totalBytes += object.Size
		}
		fmt.Printf("%d objects, %d bytes total\n", count, totalBytes)
	},
}

func init() {
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "only list objects under this prefix")
	rootCmd.AddCommand(minioCmd)
}
