package latency

import "github.com/cloudalloc/cloudalloc/pkg/catalog"

// DefaultRegions is the static region-coordinate table, loaded once at
// process start and never mutated. Coordinates are the approximate location
// of each region's primary data center campus.
var DefaultRegions = []catalog.RegionPoint{
	// AWS
	{RegionCode: "us-east-1", Provider: catalog.ProviderAWS, Latitude: 38.95, Longitude: -77.45, DisplayName: "US East (N. Virginia)"},
	{RegionCode: "us-east-2", Provider: catalog.ProviderAWS, Latitude: 39.96, Longitude: -83.00, DisplayName: "US East (Ohio)"},
	{RegionCode: "us-west-1", Provider: catalog.ProviderAWS, Latitude: 37.35, Longitude: -121.96, DisplayName: "US West (N. California)"},
	{RegionCode: "us-west-2", Provider: catalog.ProviderAWS, Latitude: 45.84, Longitude: -119.70, DisplayName: "US West (Oregon)"},
	{RegionCode: "ca-central-1", Provider: catalog.ProviderAWS, Latitude: 45.50, Longitude: -73.57, DisplayName: "Canada (Central)"},
	{RegionCode: "eu-west-1", Provider: catalog.ProviderAWS, Latitude: 53.35, Longitude: -6.26, DisplayName: "Europe (Ireland)"},
	{RegionCode: "eu-west-2", Provider: catalog.ProviderAWS, Latitude: 51.51, Longitude: -0.13, DisplayName: "Europe (London)"},
	{RegionCode: "eu-west-3", Provider: catalog.ProviderAWS, Latitude: 48.86, Longitude: 2.35, DisplayName: "Europe (Paris)"},
	{RegionCode: "eu-central-1", Provider: catalog.ProviderAWS, Latitude: 50.11, Longitude: 8.68, DisplayName: "Europe (Frankfurt)"},
	{RegionCode: "eu-north-1", Provider: catalog.ProviderAWS, Latitude: 59.33, Longitude: 18.07, DisplayName: "Europe (Stockholm)"},
	{RegionCode: "ap-south-1", Provider: catalog.ProviderAWS, Latitude: 19.08, Longitude: 72.88, DisplayName: "Asia Pacific (Mumbai)"},
	{RegionCode: "ap-northeast-1", Provider: catalog.ProviderAWS, Latitude: 35.68, Longitude: 139.69, DisplayName: "Asia Pacific (Tokyo)"},
	{RegionCode: "ap-northeast-2", Provider: catalog.ProviderAWS, Latitude: 37.57, Longitude: 126.98, DisplayName: "Asia Pacific (Seoul)"},
	{RegionCode: "ap-southeast-1", Provider: catalog.ProviderAWS, Latitude: 1.35, Longitude: 103.82, DisplayName: "Asia Pacific (Singapore)"},
	{RegionCode: "ap-southeast-2", Provider: catalog.ProviderAWS, Latitude: -33.87, Longitude: 151.21, DisplayName: "Asia Pacific (Sydney)"},
	{RegionCode: "sa-east-1", Provider: catalog.ProviderAWS, Latitude: -23.55, Longitude: -46.63, DisplayName: "South America (São Paulo)"},

	// GCP
	{RegionCode: "us-central1", Provider: catalog.ProviderGCP, Latitude: 41.26, Longitude: -95.94, DisplayName: "Iowa"},
	{RegionCode: "us-east1", Provider: catalog.ProviderGCP, Latitude: 33.20, Longitude: -80.01, DisplayName: "South Carolina"},
	{RegionCode: "us-east4", Provider: catalog.ProviderGCP, Latitude: 39.03, Longitude: -77.47, DisplayName: "Northern Virginia"},
	{RegionCode: "us-west1", Provider: catalog.ProviderGCP, Latitude: 45.60, Longitude: -121.18, DisplayName: "Oregon"},
	{RegionCode: "us-west2", Provider: catalog.ProviderGCP, Latitude: 34.05, Longitude: -118.24, DisplayName: "Los Angeles"},
	{RegionCode: "northamerica-northeast1", Provider: catalog.ProviderGCP, Latitude: 45.50, Longitude: -73.57, DisplayName: "Montréal"},
	{RegionCode: "southamerica-east1", Provider: catalog.ProviderGCP, Latitude: -23.55, Longitude: -46.63, DisplayName: "São Paulo"},
	{RegionCode: "europe-west1", Provider: catalog.ProviderGCP, Latitude: 50.45, Longitude: 3.82, DisplayName: "Belgium"},
	{RegionCode: "europe-west2", Provider: catalog.ProviderGCP, Latitude: 51.51, Longitude: -0.13, DisplayName: "London"},
	{RegionCode: "europe-west3", Provider: catalog.ProviderGCP, Latitude: 50.11, Longitude: 8.68, DisplayName: "Frankfurt"},
	{RegionCode: "europe-west4", Provider: catalog.ProviderGCP, Latitude: 53.44, Longitude: 6.84, DisplayName: "Netherlands"},
	{RegionCode: "europe-north1", Provider: catalog.ProviderGCP, Latitude: 60.57, Longitude: 27.19, DisplayName: "Finland"},
	{RegionCode: "asia-south1", Provider: catalog.ProviderGCP, Latitude: 19.08, Longitude: 72.88, DisplayName: "Mumbai"},
	{RegionCode: "asia-northeast1", Provider: catalog.ProviderGCP, Latitude: 35.68, Longitude: 139.69, DisplayName: "Tokyo"},
	{RegionCode: "asia-southeast1", Provider: catalog.ProviderGCP, Latitude: 1.35, Longitude: 103.82, DisplayName: "Singapore"},
	{RegionCode: "australia-southeast1", Provider: catalog.ProviderGCP, Latitude: -33.87, Longitude: 151.21, DisplayName: "Sydney"},

	// Azure
	{RegionCode: "eastus", Provider: catalog.ProviderAzure, Latitude: 37.37, Longitude: -79.82, DisplayName: "East US"},
	{RegionCode: "eastus2", Provider: catalog.ProviderAzure, Latitude: 36.66, Longitude: -78.39, DisplayName: "East US 2"},
	{RegionCode: "centralus", Provider: catalog.ProviderAzure, Latitude: 41.59, Longitude: -93.62, DisplayName: "Central US"},
	{RegionCode: "westus2", Provider: catalog.ProviderAzure, Latitude: 47.23, Longitude: -119.85, DisplayName: "West US 2"},
	{RegionCode: "westus3", Provider: catalog.ProviderAzure, Latitude: 33.45, Longitude: -112.07, DisplayName: "West US 3"},
	{RegionCode: "canadacentral", Provider: catalog.ProviderAzure, Latitude: 43.65, Longitude: -79.38, DisplayName: "Canada Central"},
	{RegionCode: "brazilsouth", Provider: catalog.ProviderAzure, Latitude: -23.55, Longitude: -46.63, DisplayName: "Brazil South"},
	{RegionCode: "northeurope", Provider: catalog.ProviderAzure, Latitude: 53.35, Longitude: -6.26, DisplayName: "North Europe"},
	{RegionCode: "westeurope", Provider: catalog.ProviderAzure, Latitude: 52.37, Longitude: 4.90, DisplayName: "West Europe"},
	{RegionCode: "uksouth", Provider: catalog.ProviderAzure, Latitude: 51.51, Longitude: -0.13, DisplayName: "UK South"},
	{RegionCode: "germanywestcentral", Provider: catalog.ProviderAzure, Latitude: 50.11, Longitude: 8.68, DisplayName: "Germany West Central"},
	{RegionCode: "swedencentral", Provider: catalog.ProviderAzure, Latitude: 60.67, Longitude: 17.14, DisplayName: "Sweden Central"},
	{RegionCode: "centralindia", Provider: catalog.ProviderAzure, Latitude: 18.52, Longitude: 73.86, DisplayName: "Central India"},
	{RegionCode: "japaneast", Provider: catalog.ProviderAzure, Latitude: 35.68, Longitude: 139.69, DisplayName: "Japan East"},
	{RegionCode: "southeastasia", Provider: catalog.ProviderAzure, Latitude: 1.35, Longitude: 103.82, DisplayName: "Southeast Asia"},
	{RegionCode: "australiaeast", Provider: catalog.ProviderAzure, Latitude: -33.87, Longitude: 151.21, DisplayName: "Australia East"},
}
