// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package mapdata

import "github.com/acervohiphopdf/acervomapa/spatial"

// clusterFeatures groups features into clusters based on a distance
// threshold in meters. A feature joins a cluster when it is within the
// threshold of any current member.
func clusterFeatures(features []*Feature, distanceThreshold float64) [][]*Feature {
	clusters := make([][]*Feature, 0, len(features))

	visited := make([]bool, len(features))

	for i, f1 := range features {
		if visited[i] {
			continue
		}

		cluster := []*Feature{f1}
		visited[i] = true

		for j, f2 := range features {
			if visited[j] {
				continue
			}

			for _, member := range cluster {
				p1 := featurePoint(f2)
				p2 := featurePoint(member)

				if p1.HaversineDistance(&p2) <= distanceThreshold {
					cluster = append(cluster, f2)
					visited[j] = true

					break
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

func featurePoint(f *Feature) spatial.Point {
	return spatial.Point{
		Lng: f.Geometry.Coordinates[0],
		Lat: f.Geometry.Coordinates[1],
	}
}
